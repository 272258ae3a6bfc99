package server

import (
	"os"
	"testing"
)

func TestReadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name: "memory store in development",
			env:  map[string]string{"STORE": "memory", "AUTH_SECRET": "s"},
		},
		{
			name:    "memory store in production",
			env:     map[string]string{"STORE": "memory", "ENV": "production", "AUTH_SECRET": "s"},
			wantErr: true,
		},
		{
			name:    "postgres without database url",
			env:     map[string]string{"STORE": "postgres", "REDIS_URL": "redis://localhost:6379", "AUTH_SECRET": "s"},
			wantErr: true,
		},
		{
			name: "postgres fully configured",
			env: map[string]string{
				"STORE":        "postgres",
				"DATABASE_URL": "postgres://localhost/medibook",
				"REDIS_URL":    "redis://localhost:6379",
				"AUTH_SECRET":  "s",
			},
		},
		{
			name:    "unknown environment",
			env:     map[string]string{"STORE": "memory", "ENV": "staging", "AUTH_SECRET": "s"},
			wantErr: true,
		},
		{
			name:    "missing auth secret",
			env:     map[string]string{"STORE": "memory"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"STORE", "ENV", "DATABASE_URL", "REDIS_URL", "AUTH_SECRET"} {
				// registers cleanup; unset so required checks see the key as absent
				t.Setenv(key, "")
				if v, ok := tt.env[key]; ok {
					t.Setenv(key, v)
				} else {
					_ = os.Unsetenv(key)
				}
			}

			cfg, err := ReadConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.SSE.Heartbeat <= 0 {
				t.Errorf("SSE.Heartbeat = %v, want default", cfg.SSE.Heartbeat)
			}
		})
	}
}
