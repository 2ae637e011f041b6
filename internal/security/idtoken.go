package security

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Identity is what a verified Google sign-in tells us about the caller.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

// IDTokenVerifier checks a Google/Firebase ID token issued to the front end.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier builds a verifier for projectID. The service account key
// is optional; without it the application default credentials are used.
func NewFirebaseVerifier(ctx context.Context, projectID, keyBase64 string) (IDTokenVerifier, error) {
	var opts []option.ClientOption
	if keyBase64 != "" {
		key, err := base64.StdEncoding.DecodeString(keyBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode service account key: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(key))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, ErrInvalidToken
	}
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return identityFromClaims(token.UID, token.Claims), nil
}

func identityFromClaims(uid string, claims map[string]interface{}) *Identity {
	id := &Identity{UID: uid}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		id.EmailVerified = verified
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	return id
}
