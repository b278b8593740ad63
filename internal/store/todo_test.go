package store_test

import (
	"context"
	"fmt"

	st "github.com/dataservice/chat2query/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("todo store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
		ctx    context.Context
	)

	BeforeAll(func() {
		gormDB = newTestDB()
		store = st.NewStore(gormDB)
		ctx = context.TODO()
	})

	AfterAll(func() {
		store.Close()
	})

	AfterEach(func() {
		gormDB.Exec("DELETE FROM todos;")
	})

	Context("create", func() {
		It("creates an active todo", func() {
			todo, err := store.Todo().Create(ctx, "write tests")
			Expect(err).To(BeNil())
			Expect(todo.ID).NotTo(BeZero())
			Expect(todo.Title).To(Equal("write tests"))
			Expect(todo.Completed).To(BeFalse())
			Expect(todo.CreatedAt).NotTo(BeZero())
		})
	})

	Context("list", func() {
		BeforeEach(func() {
			for i := 1; i <= 15; i++ {
				todo, err := store.Todo().Create(ctx, fmt.Sprintf("todo-%d", i))
				Expect(err).To(BeNil())
				if i%3 == 0 {
					_, err = store.Todo().Toggle(ctx, todo.ID)
					Expect(err).To(BeNil())
				}
			}
		})

		It("lists the newest todos first", func() {
			todos, err := store.Todo().List(ctx, nil, st.NewTodoQueryOptions().WithNewestFirst().WithPage(1, 10))
			Expect(err).To(BeNil())
			Expect(todos).To(HaveLen(10))
			Expect(todos[0].Title).To(Equal("todo-15"))
			Expect(todos[9].Title).To(Equal("todo-6"))
		})

		It("returns the second page", func() {
			todos, err := store.Todo().List(ctx, nil, st.NewTodoQueryOptions().WithNewestFirst().WithPage(2, 10))
			Expect(err).To(BeNil())
			Expect(todos).To(HaveLen(5))
			Expect(todos[4].Title).To(Equal("todo-1"))
		})

		It("filters completed todos", func() {
			filter := st.NewTodoQueryFilter().ByCompleted(true)
			todos, err := store.Todo().List(ctx, filter, nil)
			Expect(err).To(BeNil())
			Expect(todos).To(HaveLen(5))
			for _, todo := range todos {
				Expect(todo.Completed).To(BeTrue())
			}

			count, err := store.Todo().Count(ctx, st.NewTodoQueryFilter().ByCompleted(false))
			Expect(err).To(BeNil())
			Expect(count).To(BeEquivalentTo(10))
		})

		It("filters by id", func() {
			all, err := store.Todo().List(ctx, nil, nil)
			Expect(err).To(BeNil())

			todos, err := store.Todo().List(ctx, st.NewTodoQueryFilter().ByID(all[0].ID), nil)
			Expect(err).To(BeNil())
			Expect(todos).To(HaveLen(1))
		})
	})

	Context("update", func() {
		It("toggles a todo back and forth", func() {
			todo, err := store.Todo().Create(ctx, "toggle me")
			Expect(err).To(BeNil())

			toggled, err := store.Todo().Toggle(ctx, todo.ID)
			Expect(err).To(BeNil())
			Expect(toggled.Completed).To(BeTrue())

			toggled, err = store.Todo().Toggle(ctx, todo.ID)
			Expect(err).To(BeNil())
			Expect(toggled.Completed).To(BeFalse())
		})

		It("edits the title", func() {
			todo, err := store.Todo().Create(ctx, "old")
			Expect(err).To(BeNil())

			updated, err := store.Todo().UpdateTitle(ctx, todo.ID, "new")
			Expect(err).To(BeNil())
			Expect(updated.Title).To(Equal("new"))
		})

		It("marks every todo", func() {
			for _, title := range []string{"a", "b", "c"} {
				_, err := store.Todo().Create(ctx, title)
				Expect(err).To(BeNil())
			}

			n, err := store.Todo().SetAllCompleted(ctx, true)
			Expect(err).To(BeNil())
			Expect(n).To(BeEquivalentTo(3))

			count, err := store.Todo().Count(ctx, st.NewTodoQueryFilter().ByCompleted(true))
			Expect(err).To(BeNil())
			Expect(count).To(BeEquivalentTo(3))
		})

		It("reports missing todos", func() {
			_, err := store.Todo().Toggle(ctx, 4242)
			Expect(err).To(MatchError(st.ErrRecordNotFound))

			_, err = store.Todo().UpdateTitle(ctx, 4242, "nope")
			Expect(err).To(MatchError(st.ErrRecordNotFound))

			_, err = store.Todo().Get(ctx, 4242)
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})
	})

	Context("delete", func() {
		It("deletes a todo", func() {
			todo, err := store.Todo().Create(ctx, "delete me")
			Expect(err).To(BeNil())

			Expect(store.Todo().Delete(ctx, todo.ID)).To(Succeed())
			Expect(store.Todo().Delete(ctx, todo.ID)).To(MatchError(st.ErrRecordNotFound))
		})

		It("clears completed todos only", func() {
			done, err := store.Todo().Create(ctx, "done")
			Expect(err).To(BeNil())
			_, err = store.Todo().Toggle(ctx, done.ID)
			Expect(err).To(BeNil())
			_, err = store.Todo().Create(ctx, "pending")
			Expect(err).To(BeNil())

			n, err := store.Todo().DeleteCompleted(ctx)
			Expect(err).To(BeNil())
			Expect(n).To(BeEquivalentTo(1))

			todos, err := store.Todo().List(ctx, nil, nil)
			Expect(err).To(BeNil())
			Expect(todos).To(HaveLen(1))
			Expect(todos[0].Title).To(Equal("pending"))
		})
	})
})
