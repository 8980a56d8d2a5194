package scylla

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/gocql/gocql"
)

var keyspacePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type Options struct {
	Hosts             []string
	Keyspace          string
	Username          string
	Password          string
	Timeout           time.Duration
	ReplicationFactor int
}

// NewSession creates the keyspace and tables when missing and returns a
// session bound to the keyspace.
func NewSession(ctx context.Context, opts Options, logger *slog.Logger) (*gocql.Session, error) {
	if !keyspacePattern.MatchString(opts.Keyspace) {
		return nil, fmt.Errorf("scylla: invalid keyspace name %q", opts.Keyspace)
	}
	if len(opts.Hosts) == 0 {
		return nil, fmt.Errorf("scylla: no hosts configured")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.ReplicationFactor <= 0 {
		opts.ReplicationFactor = 1
	}

	base, err := cluster(opts, "").CreateSession()
	if err != nil {
		return nil, fmt.Errorf("scylla: connect: %w", err)
	}
	cql := fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		opts.Keyspace, opts.ReplicationFactor,
	)
	err = base.Query(cql).WithContext(ctx).Exec()
	base.Close()
	if err != nil {
		return nil, fmt.Errorf("scylla: create keyspace: %w", err)
	}

	session, err := cluster(opts, opts.Keyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("scylla: connect to keyspace %s: %w", opts.Keyspace, err)
	}
	if err := session.Query(reservationEventsTable).WithContext(ctx).Exec(); err != nil {
		session.Close()
		return nil, fmt.Errorf("scylla: create reservation_events: %w", err)
	}
	if logger != nil {
		logger.Info("scylla connected", "hosts", opts.Hosts, "keyspace", opts.Keyspace)
	}
	return session, nil
}

func cluster(opts Options, keyspace string) *gocql.ClusterConfig {
	c := gocql.NewCluster(opts.Hosts...)
	c.Keyspace = keyspace
	c.Timeout = opts.Timeout
	c.ConnectTimeout = opts.Timeout
	c.Consistency = gocql.Quorum
	if opts.Username != "" {
		c.Authenticator = gocql.PasswordAuthenticator{Username: opts.Username, Password: opts.Password}
	}
	return c
}
