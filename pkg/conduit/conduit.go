// Package conduit is the unified facade over the Snowflake, Databricks,
// and S3 connectors. A Conduit resolves configuration once per backend
// and memoizes the resulting connector.
package conduit

import (
	"context"
	"io"
	"sync"

	"github.com/wwd1015/cloudconduit/internal/config"
	"github.com/wwd1015/cloudconduit/internal/connectors"
	"github.com/wwd1015/cloudconduit/internal/logging"
	"github.com/wwd1015/cloudconduit/pkg/connector"
)

// Option configures a Conduit.
type Option func(*Conduit)

// WithLogger sets the logger used by the conduit and its connectors.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Conduit) { c.logger = logger }
}

// WithDefaultsPath points configuration resolution at a specific
// defaults file instead of the discovered one.
func WithDefaultsPath(path string) Option {
	return func(c *Conduit) { c.defaultsPath = path }
}

// WithResolver injects a prebuilt resolver, used by tests.
func WithResolver(r *config.Resolver) Option {
	return func(c *Conduit) { c.resolver = r }
}

// Conduit hands out one connector per backend. The first call per
// backend fixes its configuration; later calls return the cached
// connector regardless of arguments.
type Conduit struct {
	logger       *logging.Logger
	defaultsPath string
	resolver     *config.Resolver

	mu         sync.Mutex
	snowflake  *connectors.Snowflake
	databricks *connectors.Databricks
	s3         *connectors.S3
}

// New builds a Conduit. Without options it logs quietly to stderr and
// resolves configuration from the standard locations.
func New(opts ...Option) *Conduit {
	c := &Conduit{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.New(false, false)
	}
	if c.resolver == nil {
		if c.defaultsPath != "" {
			c.resolver = config.NewResolverWith(c.logger, c.defaultsPath, nil)
		} else {
			c.resolver = config.NewResolver(c.logger)
		}
	}
	return c
}

// Resolver exposes the underlying resolution engine.
func (c *Conduit) Resolver() *config.Resolver {
	return c.resolver
}

// Snowflake returns the warehouse connector, building it on first use.
// An empty username means the current system user.
func (c *Conduit) Snowflake(username string, overrides map[string]string) (connector.Connector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snowflake == nil {
		s, err := connectors.NewSnowflake(c.resolver, username, overrides, c.logger)
		if err != nil {
			return nil, err
		}
		c.snowflake = s
	}
	return c.snowflake, nil
}

// Databricks returns the compute connector, building it on first use.
func (c *Conduit) Databricks(overrides map[string]string) (connector.Connector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.databricks == nil {
		d, err := connectors.NewDatabricks(c.resolver, overrides, c.logger)
		if err != nil {
			return nil, err
		}
		c.databricks = d
	}
	return c.databricks, nil
}

// S3 returns the object store connector, building it on first use.
func (c *Conduit) S3(overrides map[string]string) connector.ObjectStore {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.s3 == nil {
		c.s3 = connectors.NewS3(c.resolver, overrides, c.logger)
	}
	return c.s3
}

// CloseAll closes every built connector, returning the first error.
func (c *Conduit) CloseAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var first error
	if c.snowflake != nil {
		if err := c.snowflake.Close(); err != nil && first == nil {
			first = err
		}
		c.snowflake = nil
	}
	if c.databricks != nil {
		if err := c.databricks.Close(); err != nil && first == nil {
			first = err
		}
		c.databricks = nil
	}
	if c.s3 != nil {
		if err := c.s3.Close(); err != nil && first == nil {
			first = err
		}
		c.s3 = nil
	}
	return first
}

// ConnectSnowflake builds a fresh warehouse connector and connects it.
func ConnectSnowflake(ctx context.Context, username string, overrides map[string]string) (connector.Connector, error) {
	conn, err := New().Snowflake(username, overrides)
	if err != nil {
		return nil, err
	}
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// ConnectDatabricks builds a fresh compute connector and connects it.
func ConnectDatabricks(ctx context.Context, overrides map[string]string) (connector.Connector, error) {
	conn, err := New().Databricks(overrides)
	if err != nil {
		return nil, err
	}
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// ConnectS3 builds a fresh object store connector and connects it.
func ConnectS3(ctx context.Context, overrides map[string]string) (connector.ObjectStore, error) {
	conn := New().S3(overrides)
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// Execute connects if needed and runs a query on any backend.
func Execute(ctx context.Context, conn connector.Connector, query string) (*connector.Frame, error) {
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return conn.Execute(ctx, query)
}

// UploadFrame connects if needed and writes a frame to the destination.
func UploadFrame(ctx context.Context, conn connector.Connector, frame *connector.Frame, destination string, opts connector.UploadOptions) error {
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	return conn.UploadFrame(ctx, frame, destination, opts)
}

// CopyTable connects if needed and copies source to target.
func CopyTable(ctx context.Context, conn connector.Connector, source, target string) error {
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	return conn.CopyTable(ctx, source, target)
}

// DropTable connects if needed and removes a table or object.
func DropTable(ctx context.Context, conn connector.Connector, name string) error {
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	return conn.DropTable(ctx, name)
}

// GrantAccess connects if needed and grants privileges.
func GrantAccess(ctx context.Context, conn connector.Connector, name, grantee, privileges string) error {
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	return conn.GrantAccess(ctx, name, grantee, privileges)
}

// AutoConfigure pushes non-credential defaults into the process
// environment, filling only unset variables. Failures are swallowed;
// the returned mapping lists what was set.
func AutoConfigure() map[string]string {
	return config.PushToEnv("", false, logging.NewWithWriter(io.Discard, false, true))
}
