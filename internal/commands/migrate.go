// Package commands implements the maintenance subcommands invoked from main.
package commands

import (
	"flag"
	"fmt"
	"os"

	"governd/internal/container"
	"governd/internal/encryption"
	"governd/internal/models"
	"governd/internal/types"
	"governd/internal/upstream"
	"governd/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RunMigrateCredential handles the migrate-credential command entry point
func RunMigrateCredential(args []string) {
	migrateCmd := flag.NewFlagSet("migrate-credential", flag.ExitOnError)
	fromKey := migrateCmd.String("from", "", "Source encryption key (for decrypting the stored credential)")
	toKey := migrateCmd.String("to", "", "Target encryption key (for encrypting the credential)")

	migrateCmd.Usage = func() {
		fmt.Println("Governd Credential Migration Tool")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  Enable encryption: governd migrate-credential --to new-key")
		fmt.Println("  Disable encryption: governd migrate-credential --from old-key")
		fmt.Println("  Change key: governd migrate-credential --from old-key --to new-key")
		fmt.Println()
		fmt.Println("Arguments:")
		migrateCmd.PrintDefaults()
		fmt.Println()
		fmt.Println("Notes:")
		fmt.Println("  1. Backup the database before migration")
		fmt.Println("  2. Stop the service during migration")
		fmt.Println("  3. Update ENCRYPTION_KEY and restart afterwards")
	}

	if err := migrateCmd.Parse(args); err != nil {
		logrus.Fatalf("Parameter parsing failed: %v", err)
	}

	if len(args) == 0 || (*fromKey == "" && *toKey == "") {
		migrateCmd.Usage()
		os.Exit(1)
	}

	cont, err := container.BuildContainer()
	if err != nil {
		logrus.Fatalf("Failed to build container: %v", err)
	}

	if err := cont.Invoke(func(configManager types.ConfigManager) {
		utils.SetupLogger(configManager)
	}); err != nil {
		logrus.Fatalf("Failed to setup logger: %v", err)
	}

	if err := cont.Invoke(func(db *gorm.DB) {
		if err := migrateCredential(db, *fromKey, *toKey); err != nil {
			logrus.Fatalf("Credential migration failed: %v", err)
		}
	}); err != nil {
		logrus.Fatalf("Failed to execute migration: %v", err)
	}

	logrus.Info("Credential migration completed")
}

func migrateCredential(db *gorm.DB, fromKey, toKey string) error {
	var setting models.SystemSetting
	err := db.Where("setting_key = ?", upstream.CredentialSettingKey).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("no stored credential found, nothing to migrate")
	}
	if err != nil {
		return err
	}

	fromService := encryption.NewServiceWithKey(fromKey)
	toService := encryption.NewServiceWithKey(toKey)

	plaintext, err := fromService.Decrypt(setting.SettingValue)
	if err != nil {
		return fmt.Errorf("cannot decrypt stored credential with the --from key: %w", err)
	}

	migrated, err := toService.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("cannot encrypt credential with the --to key: %w", err)
	}

	if err := db.Model(&models.SystemSetting{}).
		Where("setting_key = ?", upstream.CredentialSettingKey).
		Update("setting_value", migrated).Error; err != nil {
		return fmt.Errorf("failed to save migrated credential: %w", err)
	}

	return nil
}
