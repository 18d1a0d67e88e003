// Package secrets reads provider credentials from GCP Secret Manager.
package secrets

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretsAdapter fetches secrets on demand. A fresh client per call keeps
// credentials out of process-lifetime state; callers fetch per invocation.
type SecretsAdapter struct{}

func (a *SecretsAdapter) GetSecret(ctx context.Context, projectID, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("secretmanager init: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, name),
	})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", name, err)
	}

	// Strip whitespace and newlines to avoid issues with API keys
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}
