package tests

import (
	"context"
	"fmt"
	"log"
	"sync"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB spins up a fresh MongoDB container and returns the database connection
// along with a cleanup function.
func SetupTestDB(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("platepal_test"), func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

// MockAuthClient implements service.FirebaseAuthClient for testing.
// ValidTokens maps the ID token sent in the Authorization header to what
// VerifyIDToken returns.
type MockAuthClient struct {
	ValidTokens map[string]*auth.Token
}

func NewMockAuthClient() *MockAuthClient {
	return &MockAuthClient{
		ValidTokens: make(map[string]*auth.Token),
	}
}

func (m *MockAuthClient) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if token, ok := m.ValidTokens[idToken]; ok {
		return token, nil
	}
	return nil, fmt.Errorf("invalid mock token")
}

// AddMockUser registers a token for a Firebase identity
func (m *MockAuthClient) AddMockUser(tokenString, uid, email, name string) {
	m.ValidTokens[tokenString] = &auth.Token{
		UID: uid,
		Claims: map[string]interface{}{
			"email": email,
			"name":  name,
		},
	}
}

// StubAnalyzer returns a fixed estimate for every photo
type StubAnalyzer struct {
	Result domain.MealAnalysis
}

func (s *StubAnalyzer) AnalyzeMeal(ctx context.Context, imageData []byte) (*domain.MealAnalysis, error) {
	result := s.Result
	return &result, nil
}

// MemoryFiles keeps uploads in memory and hands out fake URLs
type MemoryFiles struct {
	mu      sync.Mutex
	Uploads map[string][]byte
}

func NewMemoryFiles() *MemoryFiles {
	return &MemoryFiles{Uploads: make(map[string][]byte)}
}

func (f *MemoryFiles) Upload(ctx context.Context, file []byte, key string, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Uploads[key] = file
	return "https://files.test/" + key, nil
}
