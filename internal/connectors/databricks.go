package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/databricks/databricks-sql-go" // registers the databricks driver

	"github.com/wwd1015/cloudconduit/internal/config"
	ccerrors "github.com/wwd1015/cloudconduit/internal/errors"
	"github.com/wwd1015/cloudconduit/internal/logging"
	"github.com/wwd1015/cloudconduit/pkg/connector"
)

// Databricks is the analytics compute connector, speaking to a SQL
// warehouse over the databricks-sql-go driver.
type Databricks struct {
	cfg    map[string]string
	logger *logging.Logger
	db     *sql.DB

	open func() (*sql.DB, error)
}

// NewDatabricks builds a Databricks connector from the resolver,
// validating the three required parameters at once.
func NewDatabricks(r *config.Resolver, overrides map[string]string, logger *logging.Logger) (*Databricks, error) {
	cfg := r.DatabricksConfig(overrides)

	if err := requireParams("databricks", config.ServiceDatabricks, cfg,
		"server_hostname", "http_path", "access_token"); err != nil {
		return nil, err
	}

	d := &Databricks{cfg: cfg, logger: logger}
	d.open = d.openDriver
	return d, nil
}

// NewDatabricksWithDB wires an existing database handle, used by tests.
func NewDatabricksWithDB(cfg map[string]string, db *sql.DB, logger *logging.Logger) *Databricks {
	d := &Databricks{cfg: cfg, logger: logger, db: db}
	d.open = func() (*sql.DB, error) { return db, nil }
	return d
}

// Config returns the resolved parameter mapping.
func (d *Databricks) Config() map[string]string {
	return d.cfg
}

func (d *Databricks) openDriver() (*sql.DB, error) {
	httpPath := d.cfg["http_path"]
	if !strings.HasPrefix(httpPath, "/") {
		httpPath = "/" + httpPath
	}

	dsn := fmt.Sprintf("token:%s@%s:443%s", d.cfg["access_token"], d.cfg["server_hostname"], httpPath)
	db, err := sql.Open("databricks", dsn)
	if err != nil {
		return nil, ccerrors.BackendError("databricks", "open", err)
	}
	return db, nil
}

// Connect establishes the Databricks connection. No-op when connected.
func (d *Databricks) Connect(ctx context.Context) error {
	if d.db != nil {
		return nil
	}

	db, err := d.open()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return ccerrors.BackendError("databricks", "connect", err)
	}

	d.db = db
	d.logger.Debug("connected to databricks workspace %s", d.cfg["server_hostname"])
	return nil
}

// Close releases the connection.
func (d *Databricks) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Connected reports whether a connection is held.
func (d *Databricks) Connected() bool {
	return d.db != nil
}

// Execute runs a statement, connecting first if needed.
func (d *Databricks) Execute(ctx context.Context, query string) (*connector.Frame, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}

	if isReadQuery(query) {
		rows, err := d.db.QueryContext(ctx, query)
		if err != nil {
			return nil, ccerrors.BackendError("databricks", "query", err)
		}
		defer rows.Close()
		return rowsToFrame(rows)
	}

	res, err := d.db.ExecContext(ctx, query)
	if err != nil {
		return nil, ccerrors.BackendError("databricks", "execute", err)
	}
	return resultFrame(res), nil
}

// fullTableName resolves 1-, 2-, and 3-part names against the configured
// catalog and schema, defaulting to main.default.
func (d *Databricks) fullTableName(table string) string {
	catalog := d.cfg["catalog"]
	if catalog == "" {
		catalog = "main"
	}
	schema := d.cfg["schema"]
	if schema == "" {
		schema = "default"
	}

	switch parts := strings.Split(table, "."); len(parts) {
	case 3:
		return table
	case 2:
		return catalog + "." + table
	default:
		return fmt.Sprintf("%s.%s.%s", catalog, schema, table)
	}
}

// databricksType maps frame values to Databricks column types.
func databricksType(v interface{}) string {
	switch v.(type) {
	case int, int32, int64:
		return "BIGINT"
	case float32, float64:
		return "DOUBLE"
	case bool:
		return "BOOLEAN"
	case time.Time:
		return "TIMESTAMP"
	default:
		return "STRING"
	}
}

// UploadFrame bulk-loads a frame into a table.
func (d *Databricks) UploadFrame(ctx context.Context, frame *connector.Frame, table string, opts connector.UploadOptions) error {
	if err := d.Connect(ctx); err != nil {
		return err
	}
	opts = opts.Normalize()
	fullName := d.fullTableName(table)

	switch opts.IfExists {
	case connector.IfExistsReplace:
		if err := d.DropTable(ctx, fullName); err != nil {
			return err
		}
	case connector.IfExistsFail:
		exists, err := d.tableExists(ctx, fullName)
		if err != nil {
			return err
		}
		if exists {
			return ccerrors.UserError{Message: fmt.Sprintf("table %s already exists", fullName)}
		}
	case connector.IfExistsAppend:
	default:
		return ccerrors.ConfigError{
			Field:   "if_exists",
			Value:   opts.IfExists,
			Message: "must be replace, append, or fail",
		}
	}

	create := buildCreateTable(fullName, frame, "`", databricksType)
	if _, err := d.db.ExecContext(ctx, create); err != nil {
		return ccerrors.BackendError("databricks", "create table", err)
	}
	return insertBatches(ctx, d.db, fullName, frame, opts.BatchSize)
}

func (d *Databricks) tableExists(ctx context.Context, fullName string) (bool, error) {
	parts := strings.Split(fullName, ".")
	if len(parts) != 3 {
		return false, ccerrors.ConfigError{
			Field:   "table",
			Value:   fullName,
			Message: "expected catalog.schema.table",
		}
	}

	query := fmt.Sprintf("SHOW TABLES IN %s.%s LIKE '%s'", parts[0], parts[1], parts[2])
	frame, err := d.Execute(ctx, query)
	if err != nil {
		return false, err
	}
	return frame.NumRows() > 0, nil
}

// CopyTable replaces target with a copy of source.
func (d *Databricks) CopyTable(ctx context.Context, source, target string) error {
	source = d.fullTableName(source)
	target = d.fullTableName(target)

	if err := d.DropTable(ctx, target); err != nil {
		return err
	}
	_, err := d.Execute(ctx, fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s", target, source))
	return err
}

// DropTable removes a table if it exists.
func (d *Databricks) DropTable(ctx context.Context, name string) error {
	_, err := d.Execute(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", d.fullTableName(name)))
	return err
}

// GrantAccess grants privileges on a table; Unity Catalog grantees are
// backtick-quoted (emails, service principal IDs).
func (d *Databricks) GrantAccess(ctx context.Context, table, grantee, privileges string) error {
	if privileges == "" {
		privileges = "SELECT"
	}
	_, err := d.Execute(ctx, fmt.Sprintf("GRANT %s ON TABLE %s TO `%s`",
		privileges, d.fullTableName(table), grantee))
	return err
}

// ListTables lists tables in the configured (or given) catalog.schema.
func (d *Databricks) ListTables(ctx context.Context, catalog, schema string) (*connector.Frame, error) {
	if catalog == "" {
		catalog = d.cfg["catalog"]
		if catalog == "" {
			catalog = "main"
		}
	}
	if schema == "" {
		schema = d.cfg["schema"]
		if schema == "" {
			schema = "default"
		}
	}
	return d.Execute(ctx, fmt.Sprintf("SHOW TABLES IN %s.%s", catalog, schema))
}

var _ connector.Connector = (*Databricks)(nil)
