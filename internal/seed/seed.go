package seed

import (
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with generated demo content.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a seeder with the given options.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 100
	}
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// ClearAll removes all seeded content. Children go first so the deletes
// work without relying on database-level cascades.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []any{
		&models.Like{},
		&models.UserTag{},
		&models.Comment{},
		&models.Post{},
		&models.User{},
	} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run generates users, posts, comments, tags and likes.
func (s *Seeder) Run() error {
	log.Printf("Seeding %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.seedUsers()
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	log.Printf("%d users created", len(users))

	posts, err := s.seedPosts(users)
	if err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	comments, err := s.seedComments(users, posts)
	if err != nil {
		return fmt.Errorf("seed comments: %w", err)
	}
	log.Printf("%d comments created", len(comments))

	tags, err := s.seedTags(users, posts)
	if err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	log.Printf("%d tags created", tags)

	likes, err := s.seedLikes(users, posts, comments)
	if err != nil {
		return fmt.Errorf("seed likes: %w", err)
	}
	log.Printf("%d likes created", likes)

	return nil
}

func (s *Seeder) seedUsers() ([]*models.User, error) {
	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(users []*models.User) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// seedComments gives each post between zero and five comments from random
// users. Some posts stay quiet on purpose.
func (s *Seeder) seedComments(users []*models.User, posts []*models.Post) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, post := range posts {
		for i := s.factory.rng.Intn(6); i > 0; i-- {
			author := users[s.factory.rng.Intn(len(users))]
			comment, err := s.factory.CreateComment(author, post)
			if err != nil {
				return nil, err
			}
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

// seedTags tags up to three distinct users on roughly half of the posts.
func (s *Seeder) seedTags(users []*models.User, posts []*models.Post) (int, error) {
	created := 0
	for _, post := range posts {
		if s.factory.rng.Intn(2) == 0 {
			continue
		}
		seen := map[uint]bool{}
		for i := s.factory.rng.Intn(3) + 1; i > 0; i-- {
			user := users[s.factory.rng.Intn(len(users))]
			if seen[user.ID] {
				continue
			}
			seen[user.ID] = true
			if _, err := s.factory.CreateTag(user, post); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// seedLikes spreads likes over posts and comments. The unique index on
// (user, kind, target) means a user can appear at most once per target, so
// candidates are tracked before writing.
func (s *Seeder) seedLikes(users []*models.User, posts []*models.Post, comments []*models.Comment) (int, error) {
	created := 0
	for _, post := range posts {
		seen := map[uint]bool{}
		for i := s.factory.rng.Intn(len(users)/2 + 1); i > 0; i-- {
			user := users[s.factory.rng.Intn(len(users))]
			if seen[user.ID] {
				continue
			}
			seen[user.ID] = true
			if err := s.factory.LikePost(user, post); err != nil {
				return created, err
			}
			created++
		}
	}
	for _, comment := range comments {
		if s.factory.rng.Intn(3) != 0 {
			continue
		}
		user := users[s.factory.rng.Intn(len(users))]
		if err := s.factory.LikeComment(user, comment); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
