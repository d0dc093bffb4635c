package store

import (
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/richard-senior/refstats/internal/logger"
	_ "modernc.org/sqlite"
)

// Persistable interface defines methods that persistent objects must implement
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]any
	SetPrimaryKey(map[string]any) error
	BeforeSave() error
	AfterSave() error
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store is a sqlite database of persistable objects
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the sqlite database at path and ensures the match table exists
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.CreateTable(&MatchRecord{}); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Database initialised", path)
	return s, nil
}

// Path returns the location the store was opened with
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateTable creates a table for the given persistable object using struct tags
func (s *Store) CreateTable(obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)
	logger.Debug("Creating table with SQL", createSQL)

	if _, err := s.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	for _, query := range generateIndexSQL(obj, tableName) {
		if _, err := s.db.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// dbField describes one persisted struct field
type dbField struct {
	index   int
	column  string
	dbType  string
	primary bool
	indexed bool
}

// fields reads the column tags of obj's type
func fields(obj any) []dbField {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}
	var ret []dbField
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("persist") == "false" {
			continue
		}
		dbType := field.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}
		columnName := field.Tag.Get("column")
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}
		ret = append(ret, dbField{
			index:   i,
			column:  columnName,
			dbType:  dbType,
			primary: field.Tag.Get("primary") == "true",
			indexed: field.Tag.Get("index") == "true",
		})
	}
	return ret
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj any, tableName string) string {
	var columns []string
	var primaryKeys []string
	for _, f := range fields(obj) {
		dbType := f.dbType
		if f.primary {
			primaryKeys = append(primaryKeys, f.column)
			dbType = strings.TrimSpace(strings.ReplaceAll(dbType, "PRIMARY KEY", ""))
		}
		columns = append(columns, fmt.Sprintf("%s %s", f.column, dbType))
	}
	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj any, tableName string) []string {
	var indexSQL []string
	for _, f := range fields(obj) {
		if !f.indexed {
			continue
		}
		indexName := fmt.Sprintf("idx_%s_%s", tableName, f.column)
		indexSQL = append(indexSQL, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName, tableName, f.column))
	}
	return indexSQL
}

// Save persists the object to the database (INSERT or UPDATE)
func (s *Store) Save(obj Persistable) error {
	return save(s.db, obj)
}

func save(q queryer, obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}
	found, err := exists(q, obj)
	if err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}
	if found {
		err = update(q, obj)
	} else {
		err = insert(q, obj)
	}
	if err != nil {
		return err
	}
	if err := obj.AfterSave(); err != nil {
		return fmt.Errorf("after save hook failed: %w", err)
	}
	return nil
}

func insert(q queryer, obj Persistable) error {
	tableName := obj.GetTableName()
	v := reflect.Indirect(reflect.ValueOf(obj))
	var columns, placeholders []string
	var values []any
	for _, f := range fields(obj) {
		columns = append(columns, f.column)
		placeholders = append(placeholders, "?")
		values = append(values, v.Field(f.index).Interface())
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if _, err := q.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

func update(q queryer, obj Persistable) error {
	tableName := obj.GetTableName()
	v := reflect.Indirect(reflect.ValueOf(obj))
	var setPairs []string
	var values []any
	for _, f := range fields(obj) {
		if f.primary {
			continue
		}
		setPairs = append(setPairs, fmt.Sprintf("%s = ?", f.column))
		values = append(values, v.Field(f.index).Interface())
	}
	whereClause, whereValues := buildWhereClause(obj.GetPrimaryKey())
	values = append(values, whereValues...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableName, strings.Join(setPairs, ", "), whereClause)
	if _, err := q.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to update %s: %w", tableName, err)
	}
	return nil
}

// Exists checks if the object exists in the database
func (s *Store) Exists(obj Persistable) (bool, error) {
	return exists(s.db, obj)
}

func exists(q queryer, obj Persistable) (bool, error) {
	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", tableName, whereClause)

	var count int
	if err := q.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", tableName, err)
	}
	return count > 0, nil
}

// Delete removes the object from the database
func (s *Store) Delete(obj Persistable) error {
	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, whereClause)
	if _, err := s.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", tableName, err)
	}
	return nil
}

// FindByPrimaryKey loads the row identified by obj's primary key into obj
func (s *Store) FindByPrimaryKey(obj Persistable) error {
	tableName := obj.GetTableName()
	columns, destinations := getSelectData(obj)
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)
	err := s.db.QueryRow(query, values...).Scan(destinations...)
	if err == sql.ErrNoRows {
		return fmt.Errorf("record not found in %s", tableName)
	}
	if err != nil {
		return fmt.Errorf("failed to scan row from %s: %w", tableName, err)
	}
	return nil
}

// FindAll retrieves all records of obj's type in insertion order
func (s *Store) FindAll(obj Persistable) ([]any, error) {
	return s.FindWhere(obj, "1 = 1 ORDER BY rowid")
}

// FindWhere executes a custom WHERE query and returns new objects of obj's type
func (s *Store) FindWhere(obj Persistable, whereClause string, args ...any) ([]any, error) {
	tableName := obj.GetTableName()
	columns, _ := getSelectData(obj)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)
	logger.Debug("FindWhere SQL", query)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}
	var results []any
	for rows.Next() {
		newObj := reflect.New(objType).Interface()
		_, destinations := getSelectData(newObj)
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, newObj)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

// getSelectData extracts column names and scan destinations for SELECT
func getSelectData(obj any) ([]string, []any) {
	v := reflect.Indirect(reflect.ValueOf(obj))
	var columns []string
	var destinations []any
	for _, f := range fields(obj) {
		columns = append(columns, f.column)
		destinations = append(destinations, v.Field(f.index).Addr().Interface())
	}
	return columns, destinations
}

// BulkSave saves multiple objects in one transaction
func (s *Store) BulkSave(objects []Persistable) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objects {
		if err := save(tx, obj); err != nil {
			return fmt.Errorf("failed to save object: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// buildWhereClause builds a WHERE clause from a primary key map, columns in sorted order
func buildWhereClause(primaryKey map[string]any) (string, []any) {
	keys := make([]string, 0, len(primaryKey))
	for column := range primaryKey {
		keys = append(keys, column)
	}
	sort.Strings(keys)
	var conditions []string
	var values []any
	for _, column := range keys {
		conditions = append(conditions, fmt.Sprintf("%s = ?", column))
		values = append(values, primaryKey[column])
	}
	return strings.Join(conditions, " AND "), values
}
