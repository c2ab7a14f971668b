package migrations

import (
	"sort"
	"time"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	Container = &MigrationContainer{}
)

type migration struct {
	version     string // yyyy-mm-dd-hh-mm, executed in lexicographic order
	description string
	run         func(db *gorm.DB) error
}

type MigrationContainer struct {
	migrations []migration
}

func (c *MigrationContainer) Add(version string, description string, run func(db *gorm.DB) error) {
	c.migrations = append(c.migrations, migration{version, description, run})
}

// Execute all migrations not completed yet. Each migration runs in its own
// database transaction together with recording it as completed.
func (c *MigrationContainer) ExecuteAll(db *gorm.DB) error {
	executed, err := database.FetchMigrations(db)
	if err != nil {
		return err
	}
	recorded := make(map[string]database.Migration, len(executed))
	for _, m := range executed {
		recorded[m.Version] = m
	}

	pending := make([]migration, len(c.migrations))
	copy(pending, c.migrations)
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].version < pending[j].version })

	for _, m := range pending {
		record, exists := recorded[m.version]
		if exists && record.Status == database.MigrationCompleted {
			continue
		}
		record.Version = m.version
		record.Description = m.description
		if err := c.execute(db, m, &record); err != nil {
			return err
		}
	}
	return nil
}

func (c *MigrationContainer) execute(db *gorm.DB, m migration, record *database.Migration) error {
	logger.Info("Executing migration %s: %s", m.version, m.description)
	start := time.Now()
	record.ExecutedAt = start

	err := database.DoInTransaction(db,
		m.run,
		func(db *gorm.DB) error {
			record.Status = database.MigrationCompleted
			record.Duration = int(time.Since(start).Milliseconds())
			return database.UpdateMigration(db, record)
		},
	)
	if err == nil {
		return nil
	}

	record.Status = database.MigrationFailed
	record.Duration = int(time.Since(start).Milliseconds())
	if saveErr := database.UpdateMigration(db, record); saveErr != nil {
		logger.Error("Failed to record failed migration %s: %v", m.version, saveErr)
	}
	return errors.Wrapf(err, "migration %s", m.version)
}
