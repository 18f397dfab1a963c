package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matheuskafuri/epaper/internal/archive"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no archive is stored for a date.
var ErrNotFound = errors.New("archive not found")

// DateLayout is the key format for stored archives.
const DateLayout = "2006-01-02"

// Readers wait up to busyTimeout for a concurrent Save.
const (
	busyTimeout = "_pragma=busy_timeout(5000)"
	walMode     = "_pragma=journal_mode(WAL)"
)

type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", "file:"+dbPath+"?"+busyTimeout+"&"+walMode)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	c := &Cache{writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}

	// Opened after the schema exists so the read-only handle never sees an
	// empty file.
	readDB, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro&"+busyTimeout)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	c.readDB = readDB
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS archives (
			date       TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			cached_at  TEXT NOT NULL DEFAULT '',
			size       INTEGER NOT NULL,
			stored_at  DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	return errors.Join(errs...)
}

// Save stores doc under its date, replacing any earlier copy.
func (c *Cache) Save(doc *archive.Document) error {
	if _, err := time.Parse(DateLayout, doc.Date); err != nil {
		return fmt.Errorf("invalid archive date %q: %w", doc.Date, err)
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding archive %s: %w", doc.Date, err)
	}
	_, err = c.writeDB.Exec(`
		INSERT INTO archives (date, payload, cached_at, size, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			payload = excluded.payload,
			cached_at = excluded.cached_at,
			size = excluded.size,
			stored_at = excluded.stored_at
	`, doc.Date, payload, doc.CachedAt, len(payload), time.Now())
	if err != nil {
		return fmt.Errorf("saving archive %s: %w", doc.Date, err)
	}
	return nil
}

// Load returns the stored archive for date, or ErrNotFound.
func (c *Cache) Load(date string) (*archive.Document, error) {
	var payload []byte
	err := c.readDB.QueryRow("SELECT payload FROM archives WHERE date = ?", date).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", date, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading archive %s: %w", date, err)
	}
	doc, err := archive.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding archive %s: %w", date, err)
	}
	return doc, nil
}

func (c *Cache) Exists(date string) (bool, error) {
	var n int
	err := c.readDB.QueryRow("SELECT COUNT(*) FROM archives WHERE date = ?", date).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking archive %s: %w", date, err)
	}
	return n > 0, nil
}

// Size is the stored payload size in bytes, or ErrNotFound.
func (c *Cache) Size(date string) (int64, error) {
	var size int64
	err := c.readDB.QueryRow("SELECT size FROM archives WHERE date = ?", date).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", date, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("reading size of %s: %w", date, err)
	}
	return size, nil
}

// Dates lists stored archive dates, oldest first.
func (c *Cache) Dates() ([]string, error) {
	rows, err := c.readDB.Query("SELECT date FROM archives ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("listing archives: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// DeleteBefore removes every archive dated strictly before the given date.
func (c *Cache) DeleteBefore(date string) (int64, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return 0, fmt.Errorf("invalid date format: %s. Expected YYYY-MM-DD", date)
	}
	res, err := c.writeDB.Exec("DELETE FROM archives WHERE date < ?", date)
	if err != nil {
		return 0, fmt.Errorf("deleting archives before %s: %w", date, err)
	}
	return res.RowsAffected()
}

// DeleteAll removes every stored archive.
func (c *Cache) DeleteAll() (int64, error) {
	res, err := c.writeDB.Exec("DELETE FROM archives")
	if err != nil {
		return 0, fmt.Errorf("clearing archives: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := c.writeDB.Exec("VACUUM"); err != nil {
		return n, fmt.Errorf("vacuum: %w", err)
	}
	return n, nil
}

// Prune removes archives older than the retention window.
func (c *Cache) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).Format(DateLayout)
	return c.DeleteBefore(cutoff)
}

// Stats returns the archive count and on-disk size, write-ahead log included.
func (c *Cache) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM archives").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting archives: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	size := info.Size()
	if wal, err := os.Stat(dbPath + "-wal"); err == nil {
		size += wal.Size()
	}
	return count, size, nil
}

func (c *Cache) NeedsRefresh(interval time.Duration) bool {
	value, err := c.getMeta("last_refresh")
	if err != nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return true
	}
	return time.Since(t) > interval
}

func (c *Cache) SetLastRefresh() error {
	return c.setMeta("last_refresh", time.Now().Format(time.RFC3339))
}

func (c *Cache) getMeta(key string) (string, error) {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	return value, err
}

func (c *Cache) setMeta(key, value string) error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
