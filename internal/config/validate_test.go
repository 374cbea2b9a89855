package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Organization.Name = "contoso"
	cfg.Target = TargetConfig{
		ResourceName: "webapp01",
		ResourceID:   "/subscriptions/sub/resourceGroups/rg",
		TenantID:     "tenant-1",
	}
	cfg.ServicePrincipal = ServicePrincipalConfig{ClientID: "client", ClientSecret: "secret"}
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name: "create organization without a name",
			mutate: func(c *Config) {
				c.Organization.Name = ""
				c.Organization.Create = true
			},
		},
		{
			name:    "missing organization",
			mutate:  func(c *Config) { c.Organization.Name = "" },
			wantErr: []string{"organization.name is required"},
		},
		{
			name:    "missing target",
			mutate:  func(c *Config) { c.Target = TargetConfig{} },
			wantErr: []string{"target.resourceName", "target.resourceId", "target.tenantId"},
		},
		{
			name: "principal neither configured nor created",
			mutate: func(c *Config) {
				c.ServicePrincipal = ServicePrincipalConfig{}
			},
			wantErr: []string{"servicePrincipal.clientId and clientSecret are required"},
		},
		{
			name: "principal created",
			mutate: func(c *Config) {
				c.ServicePrincipal = ServicePrincipalConfig{Create: true}
			},
		},
		{
			name: "client id without secret",
			mutate: func(c *Config) {
				c.ServicePrincipal = ServicePrincipalConfig{ClientID: "client", Create: true}
			},
			wantErr: []string{"clientSecret is required when clientId is set"},
		},
		{
			name:    "bad strategy",
			mutate:  func(c *Config) { c.Pipeline.Strategy = "magic" },
			wantErr: []string{`pipeline.strategy "magic" is invalid`},
		},
		{
			name:    "negative queue",
			mutate:  func(c *Config) { c.Pipeline.QueueID = -1 },
			wantErr: []string{"pipeline.queueId must not be negative"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
