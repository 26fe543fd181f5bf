package settings

import (
	"context"
	"sync/atomic"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Static serves a fixed webhook secret
type Static struct {
	secret string
}

var _ interfaces.SecretProvider = (*Static)(nil)

// NewStatic creates a provider for a fixed secret. An empty secret disables
// webhook signature verification.
func NewStatic(secret string) *Static {
	return &Static{secret: secret}
}

// WebhookSecret returns the configured secret
func (s *Static) WebhookSecret() string {
	return s.secret
}

// document is the settings document stored in Firestore
type document struct {
	WebhookSecret string    `firestore:"webhook_secret"`
	UpdatedAt     time.Time `firestore:"updated_at,omitempty"`
}

// Firestore serves the webhook secret from a Firestore document. The value is
// held in memory and refreshed by Reload, so reads never block on I/O.
type Firestore struct {
	client     *firestore.Client
	collection string
	document   string
	secret     atomic.Pointer[string]
}

var _ interfaces.SecretProvider = (*Firestore)(nil)

// NewFirestore connects to Firestore and loads the settings document once.
// fallback is served until a document exists.
func NewFirestore(ctx context.Context, projectID, databaseID, collection, doc, fallback string, opts ...option.ClientOption) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	f := &Firestore{
		client:     client,
		collection: collection,
		document:   doc,
	}
	f.secret.Store(&fallback)

	if err := f.Reload(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return f, nil
}

// WebhookSecret returns the last loaded secret
func (f *Firestore) WebhookSecret() string {
	return *f.secret.Load()
}

// Reload reads the settings document. A missing document keeps the current value.
func (f *Firestore) Reload(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	snap, err := f.client.Collection(f.collection).Doc(f.document).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			logger.Info("Settings document not found, keeping current values",
				"collection", f.collection,
				"document", f.document,
			)
			return nil
		}
		return goerr.Wrap(err, "failed to get settings document",
			goerr.V("collection", f.collection),
			goerr.V("document", f.document))
	}

	var doc document
	if err := snap.DataTo(&doc); err != nil {
		return goerr.Wrap(err, "failed to decode settings document",
			goerr.V("collection", f.collection),
			goerr.V("document", f.document))
	}

	secret, ok := webhookSecretField(snap.Data())
	if !ok {
		logger.Warn("Settings document has no webhook secret, keeping current value",
			"collection", f.collection,
			"document", f.document,
		)
		return nil
	}

	f.secret.Store(&secret)
	logger.Debug("Settings reloaded",
		"collection", f.collection,
		"document", f.document,
		"updated_at", doc.UpdatedAt,
	)

	return nil
}

// webhookSecretField returns the stored secret. An explicitly stored empty string
// is a value; a missing or non-string field is not.
func webhookSecretField(data map[string]any) (string, bool) {
	v, ok := data["webhook_secret"]
	if !ok {
		return "", false
	}
	secret, ok := v.(string)
	return secret, ok
}

// SaveWebhookSecret stores a new secret and serves it immediately
func (f *Firestore) SaveWebhookSecret(ctx context.Context, secret string) error {
	_, err := f.client.Collection(f.collection).Doc(f.document).Set(ctx, map[string]any{
		"webhook_secret": secret,
		"updated_at":     firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return goerr.Wrap(err, "failed to save settings document",
			goerr.V("collection", f.collection),
			goerr.V("document", f.document))
	}

	f.secret.Store(&secret)
	return nil
}

// Close releases the Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}
