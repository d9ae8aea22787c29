package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"courtly/internal/catalog"
	"courtly/internal/shared/clock"
	"courtly/internal/shared/config"
	"courtly/internal/shared/database"
	"courtly/internal/slots"
	"courtly/internal/users"
	"courtly/internal/wallet"
	"courtly/pkg/cache"
	"courtly/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

// Seeder populates a development database with a club, its courts and
// business hours, a few accounts with starting coins, and two weeks of
// generated slots.
type Seeder struct {
	db  *database.DB
	cfg *config.Config
	log *logger.Logger
}

func main() {
	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, cfg: cfg, log: logger.New()}

	fmt.Println("cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("failed to clean database: %v", err)
	}

	fmt.Println("seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}

	fmt.Println("done")
}

// CleanDatabase truncates all application tables, children first.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"booking_slots",
		"bookings",
		"coin_ledger",
		"wallets",
		"topup_requests",
		"slot_statuses",
		"slots",
		"business_hours",
		"courts",
		"clubs",
		"users",
	}
	for _, table := range tables {
		if err := s.db.PostgreSQL.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean table %s: %w", table, err)
		}
	}
	return nil
}

// SeedAll seeds users, the demo club and two weeks of slots.
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	seededUsers, err := s.seedUsers(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("  %d users\n", len(seededUsers))

	club, err := s.seedClub()
	if err != nil {
		return err
	}
	fmt.Printf("  club %q with %d courts\n", club.Name, len(club.Courts))

	created, err := s.seedSlots(ctx, club)
	if err != nil {
		return err
	}
	fmt.Printf("  %d slots\n", created)

	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]users.User, error) {
	walletService := wallet.NewService(wallet.NewRepository(s.db.PostgreSQL), s.log, s.cfg.Booking.InitialCoins)

	seeds := []struct {
		username string
		first    string
		last     string
		email    string
		role     users.Role
	}{
		{"manager", "Match", "Point", "manager@courtly.local", users.RoleManager},
		{"alice", "Alice", "Baseline", "alice@courtly.local", users.RolePlayer},
		{"bob", "Bob", "Dropshot", "bob@courtly.local", users.RolePlayer},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var created []users.User
	for _, seed := range seeds {
		user := users.User{
			Username:  seed.username,
			FirstName: seed.first,
			LastName:  seed.last,
			Email:     seed.email,
			Password:  string(hash),
			Role:      seed.role,
			Accept:    true,
		}
		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", seed.username, err)
		}
		if seed.role == users.RolePlayer {
			if err := walletService.GrantInitial(ctx, user.ID); err != nil {
				return nil, fmt.Errorf("failed to grant coins to %s: %w", seed.username, err)
			}
		}
		created = append(created, user)
	}
	return created, nil
}

func (s *Seeder) seedClub() (*catalog.Club, error) {
	club := catalog.Club{
		Name:     "Riverside Badminton Club",
		Timezone: "Asia/Bangkok",
	}
	if err := s.db.PostgreSQL.Create(&club).Error; err != nil {
		return nil, fmt.Errorf("failed to create club: %w", err)
	}

	for i := 1; i <= 4; i++ {
		court := catalog.Court{
			ClubID: club.ID,
			Name:   fmt.Sprintf("Court %d", i),
		}
		if err := s.db.PostgreSQL.Create(&court).Error; err != nil {
			return nil, fmt.Errorf("failed to create court: %w", err)
		}
		club.Courts = append(club.Courts, court)
	}

	// Open every day; weekends close earlier.
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		closeAt := "22:00"
		if weekday == time.Saturday || weekday == time.Sunday {
			closeAt = "20:00"
		}
		hour := catalog.BusinessHour{
			ClubID:  club.ID,
			Weekday: weekday,
			OpenAt:  "08:00",
			CloseAt: closeAt,
		}
		if err := s.db.PostgreSQL.Create(&hour).Error; err != nil {
			return nil, fmt.Errorf("failed to create business hour: %w", err)
		}
	}
	return &club, nil
}

func (s *Seeder) seedSlots(ctx context.Context, club *catalog.Club) (int, error) {
	slotService := slots.NewService(
		slots.NewRepository(s.db.PostgreSQL),
		catalog.NewRepository(s.db.PostgreSQL),
		cache.NewService(s.db.GetRedisClient()),
		clock.System(),
		s.log,
		s.cfg.Booking.DefaultSlotPrice,
		s.cfg.Redis.SlotViewTTL,
	)

	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, 13)
	return slotService.GenerateSlots(ctx, club.ID, from, to)
}
