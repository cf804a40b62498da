package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *GathererConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	u, err := url.Parse(c.Horizon.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("horizon.url %q is not a valid URL", c.Horizon.URL)
	}

	if err := c.Database.Timescale.validate("database.timescale"); err != nil {
		return err
	}

	if !c.Streams.Ledgers && !c.Streams.Trades && !c.Streams.Transactions {
		return errors.New("at least one stream must be enabled")
	}
	if c.Streams.ReconnectBaseDelay > c.Streams.ReconnectMaxDelay {
		return fmt.Errorf("streams.reconnect_base_delay (%s) cannot exceed reconnect_max_delay (%s)",
			c.Streams.ReconnectBaseDelay, c.Streams.ReconnectMaxDelay)
	}

	if c.Writers.BatchSize < 1 {
		return errors.New("writers.batch_size must be >= 1")
	}
	if c.Writers.BufferSize < 1 {
		return errors.New("writers.buffer_size must be >= 1")
	}

	if c.Poller.Interval < 0 {
		return errors.New("poller.interval must be >= 0")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
