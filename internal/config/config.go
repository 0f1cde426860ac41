// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/neuromagic888-cloud/secretsync/internal/domain/model"
)

// Defaults for the optional configuration surface.
const (
	DefaultRepository   = "neuromagic888-cloud/astra-link-validator"
	DefaultWorkflowFile = "quiet-link-validator.yml"
	DefaultRef          = "main"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Token        string
	Repository   string
	WorkflowFile string
	Ref          string
	SkipDispatch bool
	Credentials  []model.Credential
}

// Load reads configuration from environment variables and returns a validated
// Config. GITHUB_TOKEN is required and needs repo and workflow scopes.
// Optional variables with defaults: GITHUB_REPOSITORY, WORKFLOW_FILE,
// WORKFLOW_REF. Setting NO_DISPATCH to any non-empty value skips the
// workflow dispatch step. Credential values (NOTION_TOKEN required;
// LINKCHECK_DB_ID, RADAR_DB_ID, PROJECT_TRACKER_DB_ID optional) are read
// here; the sync service validates their presence before any network call.
func Load() (*Config, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("%w: GITHUB_TOKEN is not set", model.ErrConfig)
	}

	repository := DefaultRepository
	if v, ok := os.LookupEnv("GITHUB_REPOSITORY"); ok && v != "" {
		repository = v
	}

	workflowFile := DefaultWorkflowFile
	if v, ok := os.LookupEnv("WORKFLOW_FILE"); ok && v != "" {
		workflowFile = v
	}

	ref := DefaultRef
	if v, ok := os.LookupEnv("WORKFLOW_REF"); ok && v != "" {
		ref = v
	}

	return &Config{
		Token:        token,
		Repository:   repository,
		WorkflowFile: workflowFile,
		Ref:          ref,
		SkipDispatch: os.Getenv("NO_DISPATCH") != "",
		Credentials: []model.Credential{
			{Name: "NOTION_TOKEN", Value: os.Getenv("NOTION_TOKEN"), Required: true},
			{Name: "LINKCHECK_DB_ID", Value: os.Getenv("LINKCHECK_DB_ID")},
			{Name: "RADAR_DB_ID", Value: os.Getenv("RADAR_DB_ID")},
			{Name: "PROJECT_TRACKER_DB_ID", Value: os.Getenv("PROJECT_TRACKER_DB_ID")},
		},
	}, nil
}
