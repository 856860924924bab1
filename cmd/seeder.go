package cmd

import (
	"fmt"
	"log"

	userDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample donors for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		donors := []userDatamodel.User{
			{Name: "Ramesh Jain", Email: "ramesh@mail.com", Phone: "9000000001"},
			{Name: "Suresh Shah", Email: "suresh@mail.com", Phone: "9000000002"},
			{Name: "Mahavir Trust Office", Email: "office@mail.com", Phone: "9000000003"},
		}

		for _, d := range donors {
			var exists int
			row := gormDB.Raw("SELECT 1 FROM users WHERE email = ?", d.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("donor already exists:", d.Email)
				continue
			}

			d.PasswordHash = string(hash)
			d.IsActive = true
			if err := gormDB.Create(&d).Error; err != nil {
				log.Fatalf("failed to insert donor %s: %v", d.Email, err)
			}
			fmt.Println("Seeded donor:", d.Email)
		}
	},
}
