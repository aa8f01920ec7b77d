// Package config loads the credential settings of the data sources from environment variables.
//
// Every variable is listed explicitly together with the field it populates.
// The settings are plain values: they are loaded once, when a client is constructed, and never mutated.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// GoogleEnvPrefix is the common prefix of all Google service account variables.
	GoogleEnvPrefix = "GD_"

	// DefaultAWSRegion is used when AWS_REGION is not set.
	DefaultAWSRegion = "us-east-1"
)

// MissingEnvError reports every required environment variable that was not set (or was blank).
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Names, ", "))
}

// envBinding ties one environment variable to its destination field.
type envBinding struct {
	name     string
	dest     *string
	optional bool
}

// loadEnv populates all bindings and collects the names of the missing required variables.
func loadEnv(bindings []envBinding) error {
	var missing []string
	for _, b := range bindings {
		value := os.Getenv(b.name)
		if strings.TrimSpace(value) == "" {
			if !b.optional {
				missing = append(missing, b.name)
			}
			continue
		}
		*b.dest = value
	}
	if len(missing) > 0 {
		return &MissingEnvError{Names: missing}
	}
	return nil
}

// AWSSession holds the static credentials used to open an AWS session.
type AWSSession struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// LoadAWSSession reads AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY (required) and AWS_REGION (optional).
func LoadAWSSession() (AWSSession, error) {
	s := AWSSession{Region: DefaultAWSRegion}
	err := loadEnv([]envBinding{
		{name: "AWS_ACCESS_KEY_ID", dest: &s.AccessKeyID},
		{name: "AWS_SECRET_ACCESS_KEY", dest: &s.SecretAccessKey},
		{name: "AWS_REGION", dest: &s.Region, optional: true},
	})
	if err != nil {
		return AWSSession{}, err
	}
	return s, nil
}

// GoogleServiceAccount holds the fields of a Google service account key.
// The JSON tags match the key file issued by Google.
type GoogleServiceAccount struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
	UniverseDomain          string `json:"universe_domain"`
}

// LoadGoogleServiceAccount reads the GD_ prefixed service account variables, all of them are required.
func LoadGoogleServiceAccount() (GoogleServiceAccount, error) {
	var s GoogleServiceAccount
	err := loadEnv([]envBinding{
		{name: GoogleEnvPrefix + "TYPE", dest: &s.Type},
		{name: GoogleEnvPrefix + "PROJECT_ID", dest: &s.ProjectID},
		{name: GoogleEnvPrefix + "PRIVATE_KEY_ID", dest: &s.PrivateKeyID},
		{name: GoogleEnvPrefix + "PRIVATE_KEY", dest: &s.PrivateKey},
		{name: GoogleEnvPrefix + "CLIENT_EMAIL", dest: &s.ClientEmail},
		{name: GoogleEnvPrefix + "CLIENT_ID", dest: &s.ClientID},
		{name: GoogleEnvPrefix + "AUTH_URI", dest: &s.AuthURI},
		{name: GoogleEnvPrefix + "TOKEN_URI", dest: &s.TokenURI},
		{name: GoogleEnvPrefix + "AUTH_PROVIDER_X509_CERT_URL", dest: &s.AuthProviderX509CertURL},
		{name: GoogleEnvPrefix + "CLIENT_X509_CERT_URL", dest: &s.ClientX509CertURL},
		{name: GoogleEnvPrefix + "UNIVERSE_DOMAIN", dest: &s.UniverseDomain},
	})
	if err != nil {
		return GoogleServiceAccount{}, err
	}
	// .env files usually keep the PEM key on one line with escaped newlines
	s.PrivateKey = strings.ReplaceAll(s.PrivateKey, `\n`, "\n")
	return s, nil
}

// JSON renders the settings as a service account key file.
func (s GoogleServiceAccount) JSON() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode the service account key: %w", err)
	}
	return b, nil
}
