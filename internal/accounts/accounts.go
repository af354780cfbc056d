// Package accounts stores sign-up credentials for deployments that want
// username/password logins instead of name-only sessions.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	mysqldrv "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/faizmokh/jurnal/internal/config"
	"github.com/faizmokh/jurnal/internal/files"
	"github.com/faizmokh/jurnal/internal/logging"
)

var (
	// ErrUsernameTaken is returned when signing up with an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameRequired rejects blank usernames.
	ErrUsernameRequired = errors.New("username is required")
	// ErrPasswordRequired rejects blank passwords.
	ErrPasswordRequired = errors.New("password is required")
)

// Credential is one account. Accounts are created at sign-up and never
// updated or deleted.
type Credential struct {
	Username     string `gorm:"primaryKey;size:64"`
	PasswordHash string `gorm:"not null"`
	Email        string `gorm:"size:255"`
	Phone        string `gorm:"size:32"`
	CreatedAt    time.Time
}

func (Credential) TableName() string {
	return "credentials"
}

// Store persists credentials through gorm.
type Store struct {
	db   *gorm.DB
	cost int
}

// Open connects to the accounts database described by cfg and migrates it.
func Open(cfg config.Accounts, manager *files.Manager, l *log.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverMySQL:
		dialector = gormmysql.Open(MySQLDSN(cfg.MySQL))
	case config.DriverSQLite, "":
		path := cfg.Path
		if path == "" {
			path = manager.AccountsPath()
		} else {
			expanded, err := files.ExpandHome(path)
			if err != nil {
				return nil, err
			}
			path = expanded
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir accounts dir: %w", err)
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown accounts driver %q", cfg.Driver)
	}
	return open(dialector, l)
}

// OpenSQLite opens a SQLite accounts database at path.
func OpenSQLite(path string, l *log.Logger) (*Store, error) {
	return open(sqlite.Open(path), l)
}

func open(dialector gorm.Dialector, l *log.Logger) (*Store, error) {
	gormLogger := logger.New(
		logging.OrDiscard(l),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open accounts database: %w", err)
	}
	if err := db.AutoMigrate(&Credential{}); err != nil {
		return nil, fmt.Errorf("migrate accounts: %w", err)
	}
	return &Store{db: db, cost: bcrypt.DefaultCost}, nil
}

// MySQLDSN renders connection settings as a go-sql-driver DSN.
func MySQLDSN(cfg config.MySQL) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}

	mc := mysqldrv.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// SignUp stores a new credential with password hashed.
func (s *Store) SignUp(ctx context.Context, c Credential, password string) (Credential, error) {
	c.Username = strings.TrimSpace(c.Username)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Username == "" {
		return Credential{}, ErrUsernameRequired
	}
	if password == "" {
		return Credential{}, ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Credential{}, fmt.Errorf("hash password: %w", err)
	}
	c.PasswordHash = string(hash)

	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Credential{}, fmt.Errorf("%q: %w", c.Username, ErrUsernameTaken)
		}
		return Credential{}, fmt.Errorf("create credential: %w", err)
	}
	return c, nil
}

// Lookup fetches a credential by username.
func (s *Store) Lookup(ctx context.Context, username string) (Credential, error) {
	var c Credential
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&c).Error
	if err != nil {
		return Credential{}, err
	}
	return c, nil
}

// Authenticate returns the credential when password matches.
func (s *Store) Authenticate(ctx context.Context, username, password string) (Credential, error) {
	c, err := s.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Credential{}, ErrInvalidCredentials
		}
		return Credential{}, fmt.Errorf("lookup credential: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return Credential{}, ErrInvalidCredentials
	}
	return c, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
