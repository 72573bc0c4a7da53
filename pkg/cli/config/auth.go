package config

import "github.com/urfave/cli/v3"

// Auth holds JWT authentication configuration. Authentication is disabled
// when no JWKS URL is set.
type Auth struct {
	JWKSURL  string
	Issuer   string
	Audience string
}

// Flags returns CLI flags for authentication configuration
func (c *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwks-url",
			Usage:       "JWKS endpoint for API token validation (empty disables auth)",
			Destination: &c.JWKSURL,
			Sources:     cli.EnvVars("PRISM_JWKS_URL"),
		},
		&cli.StringFlag{
			Name:        "jwt-issuer",
			Usage:       "Expected JWT issuer claim",
			Destination: &c.Issuer,
			Sources:     cli.EnvVars("PRISM_JWT_ISSUER"),
		},
		&cli.StringFlag{
			Name:        "jwt-audience",
			Usage:       "Expected JWT audience claim",
			Destination: &c.Audience,
			Sources:     cli.EnvVars("PRISM_JWT_AUDIENCE"),
		},
	}
}

// Enabled reports whether API authentication is configured
func (c *Auth) Enabled() bool {
	return c.JWKSURL != ""
}
