package migrations_test

import (
	"os"
	"path"
	"path/filepath"

	"github.com/dataservice/chat2query/internal/config"
	"github.com/dataservice/chat2query/internal/store"
	"github.com/dataservice/chat2query/pkg/migrations"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("migrations", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	tableExists := func(name string) bool {
		count := 0
		tx := gormdb.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
		Expect(tx.Error).To(BeNil())
		return count == 1
	}

	BeforeAll(func() {
		cfg, err := config.NewDefault()
		Expect(err).To(BeNil())
		cfg.Database.Type = "sqlite"
		cfg.Database.Name = filepath.Join(GinkgoT().TempDir(), "migrations.db")

		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
	})

	AfterAll(func() {
		s.Close()
	})

	Context("store migrations", Ordered, func() {
		It("fails to migration the db -- migration folder does not exists", func() {
			err := migrations.MigrateStore(gormdb, "sqlite", "some folder")
			Expect(err).NotTo(BeNil())
		})

		It("fails when the migration folder is a file", func() {
			currentFolder, err := os.Getwd()
			Expect(err).To(BeNil())
			err = migrations.MigrateStore(gormdb, "sqlite", path.Join(currentFolder, "migrations.go"))
			Expect(err).To(MatchError(ContainSubstring("is not a folder")))
		})

		It("sucessfully migrate the db from the embedded files", func() {
			Expect(migrations.MigrateStore(gormdb, "sqlite", "")).To(Succeed())
			Expect(tableExists("todos")).To(BeTrue())
			Expect(tableExists("goose_db_version")).To(BeTrue())
		})

		It("sucessfully migrate the db from a folder", func() {
			currentFolder, err := os.Getwd()
			Expect(err).To(BeNil())
			Expect(migrations.MigrateStore(gormdb, "sqlite", path.Join(currentFolder, "sql", "sqlite"))).To(Succeed())
			Expect(tableExists("todos")).To(BeTrue())
		})

		It("is a no-op when run twice", func() {
			Expect(migrations.MigrateStore(gormdb, "sqlite", "")).To(Succeed())
			Expect(migrations.MigrateStore(gormdb, "sqlite", "")).To(Succeed())
		})

		AfterEach(func() {
			gormdb.Exec("DROP TABLE IF EXISTS todos;")
			gormdb.Exec("DROP TABLE IF EXISTS goose_db_version;")
		})
	})
})
