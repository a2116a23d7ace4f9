package connector

import (
	"context"
	"time"
)

// IfExists values accepted by UploadFrame and CopyTable.
const (
	IfExistsReplace = "replace"
	IfExistsAppend  = "append"
	IfExistsFail    = "fail"
)

// Frame formats accepted by the object-store connector.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// UploadOptions tunes UploadFrame behavior.
type UploadOptions struct {
	// IfExists controls collision handling: replace (default), append,
	// or fail.
	IfExists string

	// Format selects the object encoding for the object store (csv or
	// json); SQL backends ignore it.
	Format string

	// BatchSize bounds rows per INSERT statement for SQL backends.
	// Zero means the connector default.
	BatchSize int
}

// Normalize fills zero values with defaults.
func (o UploadOptions) Normalize() UploadOptions {
	if o.IfExists == "" {
		o.IfExists = IfExistsReplace
	}
	if o.Format == "" {
		o.Format = FormatCSV
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 1000
	}
	return o
}

// Connector is the uniform backend contract. Every call is a single
// blocking round trip; connectors hold one vendor connection and are not
// safe for concurrent use.
type Connector interface {
	// Connect establishes the vendor connection. Calling Connect on a
	// connected connector is a no-op.
	Connect(ctx context.Context) error

	// Close releases the vendor connection. Safe on a closed connector.
	Close() error

	// Connected reports whether a vendor connection is held.
	Connected() bool

	// Execute runs a query or operation, connecting first if needed.
	// Read-style operations return a populated Frame; SQL statements
	// return a one-row rows_affected frame.
	Execute(ctx context.Context, query string) (*Frame, error)

	// UploadFrame writes a tabular dataset to the destination (a table
	// name, or bucket/key for the object store).
	UploadFrame(ctx context.Context, frame *Frame, destination string, opts UploadOptions) error

	// CopyTable copies source to target.
	CopyTable(ctx context.Context, source, target string) error

	// DropTable removes a table or object if it exists.
	DropTable(ctx context.Context, name string) error

	// GrantAccess grants privileges on a table or object to a user or
	// role. Empty privileges default to read access.
	GrantAccess(ctx context.Context, name, grantee, privileges string) error
}

// ObjectStore extends Connector with object-store operations that have
// no SQL counterpart.
type ObjectStore interface {
	Connector

	// DownloadFrame fetches and decodes an object at "bucket/key". An
	// empty format is inferred from the key extension.
	DownloadFrame(ctx context.Context, source, format string) (*Frame, error)

	// PresignURL produces a time-limited GET URL for "bucket/key".
	PresignURL(ctx context.Context, source string, expiry time.Duration) (string, error)
}
