// Package main provides the entry point for the NoteVault application.
// It initializes and runs a web server using the Fiber framework that lets
// visitors take notes as an ephemeral guest or sign in through AWS Cognito,
// organize notes into categories, share them publicly, and export them.
// The application uses gorm for data persistence and opaque-token sessions
// stored in a gofiber storage backend.
package main
