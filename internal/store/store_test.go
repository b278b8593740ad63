package store_test

import (
	"context"
	"path/filepath"

	"github.com/dataservice/chat2query/internal/config"
	st "github.com/dataservice/chat2query/internal/store"
	"github.com/dataservice/chat2query/pkg/migrations"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func newTestDB() *gorm.DB {
	cfg, err := config.NewDefault()
	Expect(err).To(BeNil())
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = filepath.Join(GinkgoT().TempDir(), "store.db")

	db, err := st.InitDB(cfg)
	Expect(err).To(BeNil())
	Expect(migrations.MigrateStore(db, cfg.Database.Type, "")).To(Succeed())
	return db
}

var _ = Describe("Store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
	)

	BeforeAll(func() {
		gormDB = newTestDB()
		store = st.NewStore(gormDB)
		Expect(store).ToNot(BeNil())
	})

	AfterAll(func() {
		store.Close()
	})

	AfterEach(func() {
		gormDB.Exec("DELETE FROM todos;")
	})

	Context("transaction", func() {
		It("insert a todo successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			todo, err := store.Todo().Create(ctx, "buy milk")
			Expect(todo).ToNot(BeNil())
			Expect(err).To(BeNil())

			// commit
			_, cerr := st.Commit(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from todos;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("rollback a todo successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			todo, err := store.Todo().Create(ctx, "buy milk")
			Expect(todo).ToNot(BeNil())
			Expect(err).To(BeNil())

			// the row is visible inside the transaction
			count, err := store.Todo().Count(ctx, nil)
			Expect(err).To(BeNil())
			Expect(count).To(BeEquivalentTo(1))

			// rollback
			_, cerr := st.Rollback(ctx)
			Expect(cerr).To(BeNil())

			rows := 0
			err = gormDB.Raw("SELECT COUNT(*) from todos;").Scan(&rows).Error
			Expect(err).To(BeNil())
			Expect(rows).To(Equal(0))
		})

		It("reuses the transaction already in the context", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())
			nested, err := store.NewTransactionContext(ctx)
			Expect(err).To(BeNil())
			Expect(st.FromContext(nested)).To(BeIdenticalTo(st.FromContext(ctx)))

			_, cerr := st.Rollback(ctx)
			Expect(cerr).To(BeNil())
		})

		It("refuses to end a transaction twice", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			_, cerr := st.Commit(ctx)
			Expect(cerr).To(BeNil())

			// ctx still carries the finished transaction
			_, cerr = st.Commit(ctx)
			Expect(cerr).ToNot(BeNil())
			_, rerr := st.Rollback(ctx)
			Expect(rerr).ToNot(BeNil())
			Expect(st.FromContext(ctx)).To(BeNil())
		})

		It("does nothing when committing without transaction", func() {
			ctx, err := st.Commit(context.TODO())
			Expect(err).To(BeNil())
			Expect(st.FromContext(ctx)).To(BeNil())
		})
	})

	Context("statistics", func() {
		It("counts total and completed todos", func() {
			ctx := context.TODO()
			for _, title := range []string{"a", "b", "c"} {
				_, err := store.Todo().Create(ctx, title)
				Expect(err).To(BeNil())
			}
			gormDB.Exec("UPDATE todos SET completed = true WHERE title = 'a';")

			stats, err := store.Statistics(ctx)
			Expect(err).To(BeNil())
			Expect(stats.Total).To(BeEquivalentTo(3))
			Expect(stats.Completed).To(BeEquivalentTo(1))
			Expect(stats.Active()).To(BeEquivalentTo(2))
		})
	})
})
