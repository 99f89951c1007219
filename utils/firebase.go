// utils/firebase.go
package utils

import (
	"context"
	"fmt"

	"taskilo/config"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewFirebaseApp initializes the Firebase App used for Firestore and Cloud
// Messaging. It returns nil when no project is configured.
func NewFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if cfg.FirebaseProjectID == "" {
		return nil, nil
	}

	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	return app, nil
}
