package firebase

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase app used for ID token
// verification. With no FIREBASE_SERVICE_ACCOUNT_PATH set, application
// default credentials are used.
func InitFirebase() (*firebase.App, error) {
	ctx := context.Background()

	config := &firebase.Config{
		ProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
	}

	var app *firebase.App
	var err error
	if path := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); path != "" {
		app, err = firebase.NewApp(ctx, config, option.WithCredentialsFile(path))
	} else {
		app, err = firebase.NewApp(ctx, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	if _, err := app.Auth(ctx); err != nil {
		return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}

	return app, nil
}

// GetAuthClient returns a Firebase Auth client from the app.
func GetAuthClient(app *firebase.App) (*auth.Client, error) {
	return app.Auth(context.Background())
}
