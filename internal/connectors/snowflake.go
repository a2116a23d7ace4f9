package connectors

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"

	"github.com/wwd1015/cloudconduit/internal/config"
	ccerrors "github.com/wwd1015/cloudconduit/internal/errors"
	"github.com/wwd1015/cloudconduit/internal/logging"
	"github.com/wwd1015/cloudconduit/pkg/connector"
)

// Snowflake is the data warehouse connector. Construction resolves the
// full parameter mapping; Connect opens the vendor connection.
type Snowflake struct {
	cfg    map[string]string
	logger *logging.Logger
	db     *sql.DB

	// open is swapped by tests to avoid a real driver dial.
	open func() (*sql.DB, error)
}

// NewSnowflake builds a Snowflake connector from the resolver. An empty
// username means the current system user. Required parameters are
// validated here, all missing ones reported at once.
func NewSnowflake(r *config.Resolver, username string, overrides map[string]string, logger *logging.Logger) (*Snowflake, error) {
	cfg := r.SnowflakeConfig(username, overrides)

	if err := requireParams("snowflake", config.ServiceSnowflake, cfg, "account", "warehouse"); err != nil {
		return nil, err
	}

	s := &Snowflake{cfg: cfg, logger: logger}
	s.open = s.openDriver
	return s, nil
}

// NewSnowflakeWithDB wires an existing database handle, used by tests.
func NewSnowflakeWithDB(cfg map[string]string, db *sql.DB, logger *logging.Logger) *Snowflake {
	s := &Snowflake{cfg: cfg, logger: logger, db: db}
	s.open = func() (*sql.DB, error) { return db, nil }
	return s
}

// Config returns the resolved parameter mapping.
func (s *Snowflake) Config() map[string]string {
	return s.cfg
}

func (s *Snowflake) openDriver() (*sql.DB, error) {
	sfCfg := &gosnowflake.Config{
		Account:   s.cfg["account"],
		User:      s.cfg["user"],
		Password:  s.cfg["password"],
		Warehouse: s.cfg["warehouse"],
		Database:  s.cfg["database"],
		Schema:    s.cfg["schema"],
	}

	switch strings.ToLower(s.cfg["authenticator"]) {
	case "":
		// password or key pair auth
	case "externalbrowser":
		sfCfg.Authenticator = gosnowflake.AuthTypeExternalBrowser
	case "snowflake_jwt":
		sfCfg.Authenticator = gosnowflake.AuthTypeJwt
	case "oauth":
		sfCfg.Authenticator = gosnowflake.AuthTypeOAuth
	default:
		return nil, ccerrors.ConfigError{
			Field:      "authenticator",
			Value:      s.cfg["authenticator"],
			Message:    "unsupported authenticator",
			Suggestion: "Use externalbrowser, snowflake_jwt, or oauth",
		}
	}

	if path := s.cfg["private_key_path"]; path != "" {
		key, err := loadPrivateKey(path, s.cfg["private_key_passphrase"])
		if err != nil {
			return nil, err
		}
		sfCfg.PrivateKey = key
		sfCfg.Authenticator = gosnowflake.AuthTypeJwt
	}

	dsn, err := gosnowflake.DSN(sfCfg)
	if err != nil {
		return nil, ccerrors.BackendError("snowflake", "build DSN", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, ccerrors.BackendError("snowflake", "open", err)
	}
	return db, nil
}

// loadPrivateKey reads an unencrypted PKCS#8 or PKCS#1 PEM key. Encrypted
// keys must be decrypted out of band; the passphrase parameter exists so
// the resolved mapping stays complete, and is rejected here explicitly.
func loadPrivateKey(path, passphrase string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ccerrors.UserError{
			Message: fmt.Sprintf("cannot read private key %s", path),
			Err:     err,
		}
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ccerrors.UserError{Message: fmt.Sprintf("%s is not a PEM-encoded key", path)}
	}
	if passphrase != "" || strings.Contains(block.Type, "ENCRYPTED") {
		return nil, ccerrors.UserError{
			Message:    "encrypted private keys are not supported",
			Suggestion: "Decrypt the key first: openssl pkcs8 -in key.p8 -out key.pem",
		}
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, ccerrors.UserError{Message: "private key is not an RSA key"}
		}
		return rsaKey, nil
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

// Connect establishes the Snowflake connection. No-op when connected.
func (s *Snowflake) Connect(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return ccerrors.BackendError("snowflake", "connect", err)
	}

	s.db = db
	s.logger.Debug("connected to snowflake account %s as %s", s.cfg["account"], s.cfg["user"])
	return nil
}

// Close releases the connection.
func (s *Snowflake) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Connected reports whether a connection is held.
func (s *Snowflake) Connected() bool {
	return s.db != nil
}

// Execute runs a statement, connecting first if needed. Read-style
// statements return a populated Frame.
func (s *Snowflake) Execute(ctx context.Context, query string) (*connector.Frame, error) {
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}

	if isReadQuery(query) {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return nil, ccerrors.BackendError("snowflake", "query", err)
		}
		defer rows.Close()
		return rowsToFrame(rows)
	}

	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, ccerrors.BackendError("snowflake", "execute", err)
	}
	return resultFrame(res), nil
}

// snowflakeType maps frame values to Snowflake column types.
func snowflakeType(v interface{}) string {
	switch v.(type) {
	case int, int32, int64:
		return "NUMBER"
	case float32, float64:
		return "DOUBLE"
	case bool:
		return "BOOLEAN"
	case time.Time:
		return "TIMESTAMP_NTZ"
	default:
		return "VARCHAR"
	}
}

// UploadFrame bulk-loads a frame into a table. Table names are
// upper-cased, matching warehouse conventions.
func (s *Snowflake) UploadFrame(ctx context.Context, frame *connector.Frame, table string, opts connector.UploadOptions) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}
	opts = opts.Normalize()
	table = strings.ToUpper(table)

	switch opts.IfExists {
	case connector.IfExistsReplace:
		if err := s.DropTable(ctx, table); err != nil {
			return err
		}
	case connector.IfExistsFail:
		exists, err := s.tableExists(ctx, table)
		if err != nil {
			return err
		}
		if exists {
			return ccerrors.UserError{Message: fmt.Sprintf("table %s already exists", table)}
		}
	case connector.IfExistsAppend:
		// create-if-missing below is sufficient
	default:
		return ccerrors.ConfigError{
			Field:   "if_exists",
			Value:   opts.IfExists,
			Message: "must be replace, append, or fail",
		}
	}

	create := buildCreateTable(table, frame, `"`, snowflakeType)
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return ccerrors.BackendError("snowflake", "create table", err)
	}
	return insertBatches(ctx, s.db, table, frame, opts.BatchSize)
}

func (s *Snowflake) tableExists(ctx context.Context, table string) (bool, error) {
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = '%s'",
		strings.ToUpper(table))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return false, ccerrors.BackendError("snowflake", "table check", err)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return false, err
		}
	}
	return count > 0, rows.Err()
}

// CopyTable replaces target with a copy of source.
func (s *Snowflake) CopyTable(ctx context.Context, source, target string) error {
	if err := s.DropTable(ctx, target); err != nil {
		return err
	}
	_, err := s.Execute(ctx, fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s", target, source))
	return err
}

// DropTable removes a table if it exists.
func (s *Snowflake) DropTable(ctx context.Context, name string) error {
	_, err := s.Execute(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", name))
	return err
}

// GrantAccess grants privileges on a table. Grantees named ROLE_* are
// treated as roles, anything else as users.
func (s *Snowflake) GrantAccess(ctx context.Context, table, grantee, privileges string) error {
	if privileges == "" {
		privileges = "SELECT"
	}

	target := "USER " + grantee
	if strings.HasPrefix(strings.ToUpper(grantee), "ROLE_") {
		target = "ROLE " + grantee
	}

	_, err := s.Execute(ctx, fmt.Sprintf("GRANT %s ON TABLE %s TO %s", privileges, table, target))
	return err
}

// ListTables returns the tables of the current database, optionally
// filtered by schema.
func (s *Snowflake) ListTables(ctx context.Context, schema string) (*connector.Frame, error) {
	query := "SELECT TABLE_CATALOG, TABLE_SCHEMA, TABLE_NAME, TABLE_TYPE " +
		"FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_CATALOG = CURRENT_DATABASE()"
	if schema != "" {
		query += fmt.Sprintf(" AND TABLE_SCHEMA = '%s'", strings.ToUpper(schema))
	}
	query += " ORDER BY TABLE_SCHEMA, TABLE_NAME"
	return s.Execute(ctx, query)
}

var _ connector.Connector = (*Snowflake)(nil)
