package config

import (
	"time"

	"github.com/notevault/notevault/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool    // use clean path middleware to allow multi slash requests
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Auth groups the authentication provider settings.
type Auth struct {
	Cognito CognitoAuth
}

// CognitoAuth holds the AWS Cognito identity provider settings.
// Federated sign-in is only offered when the whole set is present;
// otherwise the application degrades to guest-only operation.
type CognitoAuth struct {
	Region       string `toml:"region"`
	UserPoolID   string `toml:"userPoolId"`
	ClientID     string `toml:"clientId"`
	ClientSecret string `toml:"clientSecret"`
	Domain       string `toml:"domain"` // Cognito hosted UI domain, e.g. "myapp.auth.us-east-1.amazoncognito.com"
}

// Enabled reports whether federated sign-in is configured.
func (c CognitoAuth) Enabled() bool {
	return c.Region != "" && c.UserPoolID != "" && c.ClientID != "" && c.Domain != ""
}
