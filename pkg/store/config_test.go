package store_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/counsel/pkg/store"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := store.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Backend != store.BackendMemory {
		t.Errorf("backend: got %s, want memory", cfg.Backend)
	}
	if cfg.Azure.ContainerName != "contracts" {
		t.Errorf("container_name: got %s, want contracts", cfg.Azure.ContainerName)
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_BACKEND", "s3")
	t.Setenv("TEST_BUCKET", "intake")
	t.Setenv("TEST_ENDPOINT", "http://localhost:9000")

	env := &store.Env{
		Backend:    "TEST_BACKEND",
		S3Bucket:   "TEST_BUCKET",
		S3Endpoint: "TEST_ENDPOINT",
	}

	cfg := store.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Backend != "s3" || cfg.S3.Bucket != "intake" || cfg.S3.Endpoint != "http://localhost:9000" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestConfigFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     store.Config
		wantErr string
	}{
		{"azure without credentials", store.Config{Backend: "azure"}, "connection_string or service_url required"},
		{"s3 without bucket", store.Config{Backend: "s3"}, "bucket required"},
		{"unknown backend", store.Config{Backend: "ftp"}, "unknown backend"},
		{"azure with connection string", store.Config{Backend: "azure", Azure: store.AzureConfig{ConnectionString: "conn"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := store.Config{Backend: "memory", Azure: store.AzureConfig{ContainerName: "contracts"}}
	overlay := store.Config{Backend: "azure", Azure: store.AzureConfig{ServiceURL: "https://acct.blob.core.windows.net"}}

	base.Merge(&overlay)

	if base.Backend != "azure" {
		t.Errorf("backend: got %s", base.Backend)
	}
	if base.Azure.ContainerName != "contracts" {
		t.Errorf("container_name overwritten: %s", base.Azure.ContainerName)
	}
	if base.Azure.ServiceURL == "" {
		t.Error("service_url not merged")
	}
}
