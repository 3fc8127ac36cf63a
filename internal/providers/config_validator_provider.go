package providers

import (
	"eigenkey/internal/structures"
	"errors"
	"fmt"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}

	if c.conf.Vault.Enabled && c.conf.Vault.Address == "" {
		return errors.New("vault.address is required when vault is enabled")
	}

	if c.conf.Archive.Enabled {
		if c.conf.Archive.Dir == "" {
			return errors.New("archive.dir is required when archive is enabled")
		}
		if c.conf.Archive.Interval <= 0 {
			return errors.New("archive.interval must be positive")
		}
		// anomaly scans only read the live log
		if c.conf.Archive.Retention < c.conf.Sharing.TimeWindow {
			return fmt.Errorf("archive.retention (%s) must not be shorter than sharing.timeWindow (%s)",
				c.conf.Archive.Retention, c.conf.Sharing.TimeWindow)
		}
	}

	return nil
}
