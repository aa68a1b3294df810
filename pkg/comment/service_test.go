package comment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/access"
	"github.com/trelliskit/trellis/pkg/comment"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/service"
)

type fakeRepo struct {
	comments map[string]*comment.Comment
	created  []*comment.Comment
}

func newFakeRepo(seed ...*comment.Comment) *fakeRepo {
	r := &fakeRepo{comments: make(map[string]*comment.Comment)}
	for _, c := range seed {
		r.comments[c.ID] = c
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, c *comment.Comment) error {
	if c.Commentable.Type() == comment.FingerprintType {
		parent, ok := r.comments[c.Commentable.ID()]
		if !ok {
			return comment.ErrParentNotFound
		}
		parent.ReplyCount++
	}
	r.comments[c.ID] = c
	r.created = append(r.created, c)
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (*comment.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, comment.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) Update(_ context.Context, c *comment.Comment) error {
	if _, ok := r.comments[c.ID]; !ok {
		return comment.ErrNotFound
	}
	r.comments[c.ID] = c
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return comment.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, opts comment.ListOptions) ([]comment.Comment, error) {
	var out []comment.Comment
	for _, c := range r.comments {
		if opts.Commentable == "" || c.Commentable == opts.Commentable {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeRepo) Count(ctx context.Context, opts comment.ListOptions) (int64, error) {
	items, _ := r.List(ctx, opts)
	return int64(len(items)), nil
}

func actorCtx(t *testing.T, fp fingerprint.Fingerprint) context.Context {
	t.Helper()
	return access.WithActor(t.Context(), fp)
}

func requireStatus(t *testing.T, err error, status service.Status) {
	t.Helper()
	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, status, svcErr.Status)
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates and renders body", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc := comment.NewService(repo, access.AllowAll())

		c, err := svc.Create(actorCtx(t, "User/1"), comment.CreateInput{
			Commentable: "Story/1",
			Body:        "**bold** words",
		})
		require.NoError(t, err)
		require.NotEmpty(t, c.ID)
		require.Equal(t, fingerprint.Fingerprint("User/1"), c.Author)
		require.Equal(t, "**bold** words", c.Body)
		require.Contains(t, c.BodyHTML, "<strong>bold</strong>")
	})

	t.Run("reply bumps parent count", func(t *testing.T) {
		t.Parallel()
		parent := &comment.Comment{ID: "p1", Commentable: "Story/1", Author: "User/1"}
		repo := newFakeRepo(parent)
		svc := comment.NewService(repo, access.AllowAll())

		reply, err := svc.Create(actorCtx(t, "User/2"), comment.CreateInput{
			Commentable: parent.Fingerprint(),
			Body:        "agreed",
		})
		require.NoError(t, err)
		require.True(t, reply.IsReply())
		require.Equal(t, 1, repo.comments["p1"].ReplyCount)
	})

	t.Run("missing parent", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(newFakeRepo(), access.AllowAll())

		_, err := svc.Create(actorCtx(t, "User/1"), comment.CreateInput{
			Commentable: "Comment/ghost",
			Body:        "hello",
		})
		requireStatus(t, err, service.StatusNotFound)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(newFakeRepo(), access.AllowAll())

		_, err := svc.Create(t.Context(), comment.CreateInput{Commentable: "Story/1", Body: "x"})
		requireStatus(t, err, service.StatusUnauthorized)
	})

	t.Run("denied by checker", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(newFakeRepo(), access.DenyAll())

		_, err := svc.Create(actorCtx(t, "User/1"), comment.CreateInput{Commentable: "Story/1", Body: "x"})
		requireStatus(t, err, service.StatusForbidden)
	})

	t.Run("empty body unprocessable", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(newFakeRepo(), access.AllowAll())

		_, err := svc.Create(actorCtx(t, "User/1"), comment.CreateInput{Commentable: "Story/1", Body: "  "})
		requireStatus(t, err, service.StatusUnprocessable)
	})

	t.Run("notify callback fires", func(t *testing.T) {
		t.Parallel()
		var notified *comment.Comment
		svc := comment.NewService(newFakeRepo(), access.AllowAll(),
			comment.WithNotify(func(_ context.Context, c *comment.Comment) { notified = c }),
		)

		c, err := svc.Create(actorCtx(t, "User/1"), comment.CreateInput{Commentable: "Story/1", Body: "hi"})
		require.NoError(t, err)
		require.Equal(t, c, notified)
	})
}

func TestServiceGet(t *testing.T) {
	t.Parallel()

	seed := &comment.Comment{ID: "c1", Commentable: "Story/1", Author: "User/1", Body: "hi"}

	t.Run("author reads own comment despite deny", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(newFakeRepo(seed), access.DenyAll())

		c, err := svc.Get(actorCtx(t, "User/1"), "c1")
		require.NoError(t, err)
		require.Equal(t, "c1", c.ID)
	})

	t.Run("stranger needs read", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(newFakeRepo(seed), access.DenyAll())

		_, err := svc.Get(actorCtx(t, "User/2"), "c1")
		requireStatus(t, err, service.StatusForbidden)
	})

	t.Run("missing comment", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(newFakeRepo(), access.AllowAll())

		_, err := svc.Get(actorCtx(t, "User/1"), "nope")
		requireStatus(t, err, service.StatusNotFound)
	})
}

func TestServiceUpdate(t *testing.T) {
	t.Parallel()

	newSeed := func() *comment.Comment {
		return &comment.Comment{ID: "c1", Commentable: "Story/1", Author: "User/1", Body: "old"}
	}

	t.Run("author updates body and html", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo(newSeed())
		svc := comment.NewService(repo, access.DenyAll())

		body := "*new*"
		c, err := svc.Update(actorCtx(t, "User/1"), "c1", comment.UpdateInput{Body: &body})
		require.NoError(t, err)
		require.Equal(t, "*new*", c.Body)
		require.Contains(t, c.BodyHTML, "<em>new</em>")
	})

	t.Run("manage permission allows moderation", func(t *testing.T) {
		t.Parallel()
		checker := access.CheckerFunc(func(_ context.Context, _ fingerprint.Fingerprint, op access.Permission, _ fingerprint.Fingerprint) (bool, error) {
			return op == access.PermissionManage, nil
		})
		svc := comment.NewService(newFakeRepo(newSeed()), checker)

		title := "flagged"
		_, err := svc.Update(actorCtx(t, "Moderator/9"), "c1", comment.UpdateInput{Title: &title})
		require.NoError(t, err)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(newFakeRepo(newSeed()), access.DenyAll())

		title := "x"
		_, err := svc.Update(actorCtx(t, "User/2"), "c1", comment.UpdateInput{Title: &title})
		requireStatus(t, err, service.StatusForbidden)
	})

	t.Run("blank body rejected", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(newFakeRepo(newSeed()), access.AllowAll())

		body := " "
		_, err := svc.Update(actorCtx(t, "User/1"), "c1", comment.UpdateInput{Body: &body})
		requireStatus(t, err, service.StatusUnprocessable)
	})
}

func TestServiceDelete(t *testing.T) {
	t.Parallel()

	t.Run("author deletes", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo(&comment.Comment{ID: "c1", Commentable: "Story/1", Author: "User/1"})
		svc := comment.NewService(repo, access.DenyAll())

		require.NoError(t, svc.Delete(actorCtx(t, "User/1"), "c1"))
		require.NotContains(t, repo.comments, "c1")
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo(&comment.Comment{ID: "c1", Commentable: "Story/1", Author: "User/1"})
		svc := comment.NewService(repo, access.DenyAll())

		requireStatus(t, svc.Delete(actorCtx(t, "User/2"), "c1"), service.StatusForbidden)
	})
}

func TestServiceList(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(
		&comment.Comment{ID: "c1", Commentable: "Story/1", Author: "User/1"},
		&comment.Comment{ID: "c2", Commentable: "Story/1", Author: "User/2"},
		&comment.Comment{ID: "c3", Commentable: "Story/2", Author: "User/1"},
	)

	t.Run("lists with page metadata", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(repo, access.AllowAll())

		page, err := svc.List(actorCtx(t, "User/1"), comment.ListOptions{Commentable: "Story/1"}, service.Pagination{})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		require.EqualValues(t, 2, page.Total)
		require.Equal(t, 1, page.PageNumber)
	})

	t.Run("requires commentable", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(repo, access.AllowAll())

		_, err := svc.List(actorCtx(t, "User/1"), comment.ListOptions{}, service.Pagination{})
		requireStatus(t, err, service.StatusBadRequest)
	})

	t.Run("denied", func(t *testing.T) {
		t.Parallel()
		svc := comment.NewService(repo, access.DenyAll())

		_, err := svc.List(actorCtx(t, "User/1"), comment.ListOptions{Commentable: "Story/1"}, service.Pagination{})
		requireStatus(t, err, service.StatusForbidden)
	})
}
