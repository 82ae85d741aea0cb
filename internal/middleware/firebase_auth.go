package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"

	firebase "firebase.google.com/go/v4"
	"github.com/gofiber/fiber/v2"
	"google.golang.org/api/option"
)

// InitFirebase initializes Firebase Admin SDK with environment variables
func InitFirebase(projectID, privateKeyB64, clientEmail string) (*firebase.App, error) {
	// Decode base64 private key
	privateKey, err := base64.StdEncoding.DecodeString(privateKeyB64)
	if err != nil {
		return nil, err
	}

	credentialsJSON := map[string]interface{}{
		"type":         "service_account",
		"project_id":   projectID,
		"private_key":  string(privateKey),
		"client_email": clientEmail,
	}

	app, err := firebase.NewApp(context.Background(), &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON(mustMarshalJSON(credentialsJSON)))
	if err != nil {
		return nil, err
	}

	return app, nil
}

// GetUserID extracts the user ID from Fiber context.
// Only valid behind VerifyToken.
func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

func mustMarshalJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
