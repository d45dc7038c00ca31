// Package config loads service configuration with viper.
//
// LoadConfig looks for cmd/<service>/config.yml (and a few fallbacks), loads
// an optional .env file through godotenv and lets environment variables
// override file values. With WithEnvPrefix("CLINIC"), CLINIC_AUTH_JWT_SECRET
// sets auth.jwt.secret.
//
//	var cfg AppConfig
//	if err := config.LoadConfig("clinic-api", &cfg, config.WithEnvPrefix("CLINIC")); err != nil {
//		return err
//	}
package config
