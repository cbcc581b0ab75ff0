package handlers

import (
	"fmt"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/diet-service/internal/config"
)

// CasdoorSSO verifies Bearer tokens issued by Casdoor. The Casdoor user
// name must match a local user id.
type CasdoorSSO struct {
	client *casdoorsdk.Client
}

func NewCasdoorSSO(cfg config.CasdoorConfig) *CasdoorSSO {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorSSO{client: client}
}

func (s *CasdoorSSO) Subject(token string) (string, error) {
	claims, err := s.client.ParseJwtToken(token)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.User.Name == "" {
		return "", fmt.Errorf("token carries no user name")
	}
	return claims.User.Name, nil
}
