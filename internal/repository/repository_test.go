package repository

import (
	"context"
	"testing"
	"time"

	"github.com/feed-system/social-api/internal/config"
	"github.com/feed-system/social-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db.DB)
}

func createUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	u := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "hash"}
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

func createPost(t *testing.T, s *Store, author *models.User, content string, tags ...string) *models.Post {
	t.Helper()
	ctx := context.Background()
	hashtags, err := s.Hashtags.FindOrCreateAll(ctx, tags)
	require.NoError(t, err)
	p := &models.Post{AuthorID: author.ID, Content: content, Hashtags: hashtags}
	require.NoError(t, s.Posts.Create(ctx, p))
	return p
}

func TestNewDatabase_RejectsUnknownDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"}, logger.Silent)
	assert.Error(t, err)
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "ada@example.com")

	byEmail, err := s.Users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := s.Users.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := &models.User{FirstName: "X", LastName: "Y", Email: "ada@example.com", Password: "hash"}
	assert.Error(t, s.Users.Create(ctx, dup))
}

func TestUserRepository_ListAndGetByIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createUser(t, s, "a@example.com")
	b := createUser(t, s, "b@example.com")
	createUser(t, s, "c@example.com")

	users, err := s.Users.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, b.ID, users[0].ID)

	total, err := s.Users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	found, err := s.Users.GetByIDs(ctx, []uint{a.ID, 4242})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "a@example.com", found[a.ID].Email)
}

func TestUserRepository_DeleteRemovesDependents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	bob := createUser(t, s, "bob@example.com")

	post := createPost(t, s, alice, "hello world", "go")
	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: bob.ID, PostID: post.ID}))
	bobPost := createPost(t, s, bob, "bob here")
	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: alice.ID, PostID: bobPost.ID}))
	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}))
	require.NoError(t, s.Activities.Create(ctx, &models.Activity{
		UserID: alice.ID, Type: models.ActivityPostCreated, ReferenceKind: models.ReferenceKindPost, ReferenceID: post.ID,
	}))

	require.NoError(t, s.Transaction(ctx, func(tx *Store) error {
		return tx.Users.Delete(ctx, alice.ID)
	}))

	gone, err := s.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var count int64
	s.db.Model(&models.Post{}).Count(&count)
	assert.EqualValues(t, 1, count, "only bob's post remains")
	s.db.Model(&models.Like{}).Count(&count)
	assert.EqualValues(t, 0, count)
	s.db.Model(&models.Follow{}).Count(&count)
	assert.EqualValues(t, 0, count)
	s.db.Model(&models.Activity{}).Count(&count)
	assert.EqualValues(t, 0, count)
	s.db.Table("post_hashtags").Count(&count)
	assert.EqualValues(t, 0, count)

	// hashtags outlive their posts
	tag, err := s.Hashtags.GetByTag(ctx, "go")
	require.NoError(t, err)
	assert.NotNil(t, tag)
}

func TestHashtagRepository_FindOrCreateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Hashtags.FindOrCreate(ctx, "golang")
	require.NoError(t, err)
	second, err := s.Hashtags.FindOrCreate(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := s.Hashtags.FindOrCreate(ctx, "Golang")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "tags are case-sensitive")

	missing, err := s.Hashtags.GetByTag(ctx, "rust")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostRepository_CreateLoadsRelations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := createUser(t, s, "author@example.com")
	post := createPost(t, s, author, "tagged post", "b", "a")

	loaded, err := s.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "author@example.com", loaded.Author.Email)
	require.Len(t, loaded.Hashtags, 2)
	assert.Equal(t, "b", loaded.Hashtags[0].Tag)
	assert.Equal(t, "a", loaded.Hashtags[1].Tag)

	missing, err := s.Posts.GetByID(ctx, 777)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostRepository_ListingsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	bob := createUser(t, s, "bob@example.com")
	carol := createUser(t, s, "carol@example.com")

	p1 := createPost(t, s, alice, "first", "go")
	p2 := createPost(t, s, bob, "second")
	p3 := createPost(t, s, carol, "third", "go")
	p4 := createPost(t, s, alice, "fourth")

	all, err := s.Posts.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []uint{p4.ID, p3.ID, p2.ID, p1.ID}, postIDs(all))

	byAuthors, err := s.Posts.GetByAuthorIDs(ctx, []uint{alice.ID, bob.ID}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{p4.ID, p2.ID, p1.ID}, postIDs(byAuthors))
	total, err := s.Posts.CountByAuthorIDs(ctx, []uint{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	tag, err := s.Hashtags.GetByTag(ctx, "go")
	require.NoError(t, err)
	tagged, err := s.Posts.GetByHashtagID(ctx, tag.ID, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{p3.ID}, postIDs(tagged))
	require.Len(t, tagged[0].Hashtags, 1)
	tagTotal, err := s.Posts.CountByHashtagID(ctx, tag.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, tagTotal)
}

func TestPostRepository_UpdateAndReplaceHashtags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := createUser(t, s, "author@example.com")
	post := createPost(t, s, author, "before", "old")

	require.NoError(t, s.Posts.UpdateContent(ctx, post, "after"))
	tags, err := s.Hashtags.FindOrCreateAll(ctx, []string{"new"})
	require.NoError(t, err)
	require.NoError(t, s.Posts.ReplaceHashtags(ctx, post, tags))

	loaded, err := s.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", loaded.Content)
	require.Len(t, loaded.Hashtags, 1)
	assert.Equal(t, "new", loaded.Hashtags[0].Tag)

	require.NoError(t, s.Posts.ReplaceHashtags(ctx, loaded, []models.Hashtag{}))
	loaded, err = s.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Hashtags)
}

func TestPostRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := createUser(t, s, "author@example.com")
	fan := createUser(t, s, "fan@example.com")
	post := createPost(t, s, author, "doomed", "x")
	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: fan.ID, PostID: post.ID}))

	require.NoError(t, s.Posts.Delete(ctx, post.ID))

	gone, err := s.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	liked, err := s.Likes.IsLiked(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeRepository(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := createUser(t, s, "author@example.com")
	a := createUser(t, s, "a@example.com")
	b := createUser(t, s, "b@example.com")
	p1 := createPost(t, s, author, "one")
	p2 := createPost(t, s, author, "two")
	p3 := createPost(t, s, author, "three")

	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: a.ID, PostID: p1.ID}))
	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: b.ID, PostID: p1.ID}))
	require.NoError(t, s.Likes.Create(ctx, &models.Like{UserID: a.ID, PostID: p2.ID}))
	assert.Error(t, s.Likes.Create(ctx, &models.Like{UserID: a.ID, PostID: p2.ID}))

	counts, err := s.Likes.CountByPostIDs(ctx, []uint{p1.ID, p2.ID, p3.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[p1.ID])
	assert.EqualValues(t, 1, counts[p2.ID])
	assert.EqualValues(t, 0, counts[p3.ID])

	removed, err := s.Likes.Delete(ctx, a.ID, p1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
	removed, err = s.Likes.Delete(ctx, a.ID, p1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, removed)

	empty, err := s.Likes.CountByPostIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFollowRepository_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createUser(t, s, "a@example.com")
	b := createUser(t, s, "b@example.com")
	c := createUser(t, s, "c@example.com")

	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}))
	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: c.ID}))
	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: c.ID, FollowingID: b.ID}))

	ids, err := s.Follows.FollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{b.ID, c.ID}, ids)

	followers, err := s.Follows.GetFollowers(ctx, b.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, followers, 2)
	n, err := s.Follows.CountFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	edge, err := s.Follows.GetActive(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NotNil(t, edge)
	require.NoError(t, s.Follows.Close(ctx, edge, time.Now()))

	edge, err = s.Follows.GetActive(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, edge)

	following, err := s.Follows.GetFollowing(ctx, a.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, c.ID, following[0].ID)
	n, err = s.Follows.CountFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// a closed edge does not block a new one
	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}))
	assert.Error(t, s.Follows.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}))
}

func TestActivityRepository_Find(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "u@example.com")
	other := createUser(t, s, "other@example.com")

	add := func(userID uint, typ models.ActivityType, ref uint) *models.Activity {
		a := &models.Activity{UserID: userID, Type: typ, ReferenceKind: typ.ReferenceKind(), ReferenceID: ref}
		require.NoError(t, s.Activities.Create(ctx, a))
		return a
	}
	created := add(u.ID, models.ActivityPostCreated, 1)
	liked := add(u.ID, models.ActivityPostLiked, 1)
	followed := add(u.ID, models.ActivityUserFollowed, other.ID)
	add(other.ID, models.ActivityFollowedBy, u.ID)

	all, total, err := s.Activities.Find(ctx, ActivityFilter{UserID: u.ID, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []uint{followed.ID, liked.ID, created.ID}, activityIDs(all))

	asc, _, err := s.Activities.Find(ctx, ActivityFilter{UserID: u.ID, Ascending: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []uint{created.ID, liked.ID}, activityIDs(asc))

	posts, total, err := s.Activities.Find(ctx, ActivityFilter{
		UserID: u.ID,
		Types:  []models.ActivityType{models.ActivityPostCreated, models.ActivityPostDeleted},
		Limit:  10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []uint{created.ID}, activityIDs(posts))

	future := time.Now().Add(time.Hour)
	none, total, err := s.Activities.Find(ctx, ActivityFilter{UserID: u.ID, Since: &future, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)

	past := time.Now().Add(-time.Hour)
	bounded, total, err := s.Activities.Find(ctx, ActivityFilter{UserID: u.ID, Since: &past, Until: &future, Offset: 2, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, bounded, 1)
}

func TestOutboxRepository(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &models.OutboxEvent{Topic: "activity-events", EventKey: "1", EventType: "post_created", Payload: `{}`}
	second := &models.OutboxEvent{Topic: "activity-events", EventKey: "2", EventType: "post_liked", Payload: `{}`}
	require.NoError(t, s.Outbox.Create(ctx, first))
	require.NoError(t, s.Outbox.Create(ctx, second))
	assert.NotEqual(t, uuid.Nil, first.ID)

	pending, err := s.Outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, s.Outbox.MarkPublished(ctx, []uuid.UUID{first.ID}, time.Now()))
	require.NoError(t, s.Outbox.MarkPublished(ctx, nil, time.Now()))

	pending, err = s.Outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx *Store) error {
		createUser(t, tx, "temp@example.com")
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	u, err := s.Users.GetByEmail(ctx, "temp@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func postIDs(posts []*models.Post) []uint {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func activityIDs(activities []*models.Activity) []uint {
	ids := make([]uint, len(activities))
	for i, a := range activities {
		ids[i] = a.ID
	}
	return ids
}
