package primitive

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"time"

	"fexl/internal/object"
	"fexl/internal/trace"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// domainState holds the mutable host-side resources the domain-stack
// primitives hand out handles to: open database connections and compiled
// regexes, grounded in internal/foreign/slug_io_db.go's
// map[int64]*sql.DB and internal/foreign/slug_regex.go's pattern cache.
type domainState struct {
	dbConns map[int64]*sql.DB
	regexes map[string]*regexp.Regexp

	// defaultDriver/defaultDSN come from the config file's [persistence]
	// block (see internal/util.Configuration.Persistence); db_open falls
	// back to them when called with no arguments.
	defaultDriver string
	defaultDSN    string
}

func newDomainState() *domainState {
	return &domainState{
		dbConns: map[int64]*sql.DB{},
		regexes: map[string]*regexp.Regexp{},
	}
}

// SetDefaultPersistence records the driver/DSN db_open falls back to when
// called with no arguments. cmd/app/main.go calls this once at startup
// with the loaded Configuration's Persistence block.
func (r *Registry) SetDefaultPersistence(driver, dsn string) {
	r.domain.defaultDriver = driver
	r.domain.defaultDSN = dsn
}

func (r *Registry) compiledRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := r.domain.regexes[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "regex: bad pattern %q", pattern)
	}
	r.domain.regexes[pattern] = re
	return re, nil
}

func (r *Registry) registerDomain() {
	r.register("db_open", func(args []object.Value) (object.Value, error) {
		var driverName, dsn string
		switch len(args) {
		case 0:
			if r.domain.defaultDSN == "" {
				return nil, errors.Errorf("db_open: no arguments given and no [persistence] default configured")
			}
			driverName, dsn = r.domain.defaultDriver, r.domain.defaultDSN
		case 2:
			d, ok := args[0].(*object.Str)
			if !ok {
				return nil, errors.Errorf("db_open: driver must be STR, got %s", args[0].Type())
			}
			s, ok := args[1].(*object.Str)
			if !ok {
				return nil, errors.Errorf("db_open: dsn must be STR, got %s", args[1].Type())
			}
			driverName, dsn = d.Value, s.Value
		default:
			return nil, errors.Errorf("db_open expects () or (driver, dsn)")
		}
		db, err := sql.Open(driverName, dsn)
		if err != nil {
			return nil, errors.Wrap(err, "db_open")
		}
		if err := db.Ping(); err != nil {
			return nil, errors.Wrap(err, "db_open: ping")
		}
		id := r.nextHandleID()
		r.domain.dbConns[id] = db
		return &object.Num{Value: float64(id)}, nil
	})

	r.register("db_query", func(args []object.Value) (object.Value, error) {
		if len(args) != 2 {
			return nil, errors.Errorf("db_query expects (handle, sql)")
		}
		db, err := r.dbByHandle(args[0])
		if err != nil {
			return nil, err
		}
		query, ok := args[1].(*object.Str)
		if !ok {
			return nil, errors.Errorf("db_query: sql must be STR, got %s", args[1].Type())
		}
		rows, err := db.Query(query.Value)
		if err != nil {
			return nil, errors.Wrap(err, "db_query")
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return nil, errors.Wrap(err, "db_query: columns")
		}
		result := &object.List{}
		for rows.Next() {
			scanDest := make([]any, len(cols))
			scanVals := make([]any, len(cols))
			for i := range scanDest {
				scanDest[i] = &scanVals[i]
			}
			if err := rows.Scan(scanDest...); err != nil {
				return nil, errors.Wrap(err, "db_query: scan")
			}
			row := map[string]object.Value{}
			for i, col := range cols {
				row[col] = goToValue(scanVals[i])
			}
			result.Elements = append(result.Elements, &object.Map{Pairs: row})
		}
		return &object.QuoteVal{Payload: result}, nil
	})

	r.register("db_exec", func(args []object.Value) (object.Value, error) {
		if len(args) != 2 {
			return nil, errors.Errorf("db_exec expects (handle, sql)")
		}
		db, err := r.dbByHandle(args[0])
		if err != nil {
			return nil, err
		}
		query, ok := args[1].(*object.Str)
		if !ok {
			return nil, errors.Errorf("db_exec: sql must be STR, got %s", args[1].Type())
		}
		res, err := db.Exec(query.Value)
		if err != nil {
			return nil, errors.Wrap(err, "db_exec")
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, errors.Wrap(err, "db_exec: rows affected")
		}
		return &object.Num{Value: float64(affected)}, nil
	})

	r.register("db_close", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("db_close expects (handle)")
		}
		db, err := r.dbByHandle(args[0])
		if err != nil {
			return nil, err
		}
		if err := db.Close(); err != nil {
			return nil, errors.Wrap(err, "db_close")
		}
		return &object.Nil{}, nil
	})

	r.register("regex_match", func(args []object.Value) (object.Value, error) {
		if len(args) != 2 {
			return nil, errors.Errorf("regex_match expects (pattern, s)")
		}
		pattern, s, err := twoStrs("regex_match", args)
		if err != nil {
			return nil, err
		}
		re, err := r.compiledRegex(pattern)
		if err != nil {
			return nil, err
		}
		return &object.Bool{Value: re.MatchString(s)}, nil
	})

	r.register("regex_find_all", func(args []object.Value) (object.Value, error) {
		if len(args) != 2 {
			return nil, errors.Errorf("regex_find_all expects (pattern, s)")
		}
		pattern, s, err := twoStrs("regex_find_all", args)
		if err != nil {
			return nil, err
		}
		re, err := r.compiledRegex(pattern)
		if err != nil {
			return nil, err
		}
		matches := re.FindAllString(s, -1)
		elems := make([]object.Value, len(matches))
		for i, m := range matches {
			elems[i] = &object.Str{Value: m}
		}
		return &object.List{Elements: elems}, nil
	})

	r.register("json_encode", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("json_encode expects 1 argument")
		}
		b, err := json.Marshal(valueToGo(args[0]))
		if err != nil {
			return nil, errors.Wrap(err, "json_encode")
		}
		return &object.Str{Value: string(b)}, nil
	})

	r.register("json_decode", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("json_decode expects 1 argument")
		}
		s, ok := args[0].(*object.Str)
		if !ok {
			return nil, errors.Errorf("json_decode expects STR, got %s", args[0].Type())
		}
		var decoded any
		if err := json.Unmarshal([]byte(s.Value), &decoded); err != nil {
			return nil, errors.Wrap(err, "json_decode")
		}
		return goToValue(decoded), nil
	})

	r.register("sha256_hex", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("sha256_hex expects 1 argument")
		}
		s, ok := args[0].(*object.Str)
		if !ok {
			return nil, errors.Errorf("sha256_hex expects STR, got %s", args[0].Type())
		}
		sum := sha256.Sum256([]byte(s.Value))
		return &object.Str{Value: hex.EncodeToString(sum[:])}, nil
	})

	r.register("now_unix", func(args []object.Value) (object.Value, error) {
		if len(args) != 0 {
			return nil, errors.Errorf("now_unix expects no arguments")
		}
		return &object.Num{Value: float64(time.Now().Unix())}, nil
	})

	r.register("register_traceable", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("register_traceable expects 1 argument")
		}
		callable, ok := args[0].(object.Callable)
		if !ok {
			return nil, errors.Errorf("register_traceable expects a callable, got %s", args[0].Type())
		}
		return trace.Register(callable), nil
	})
}

func (r *Registry) dbByHandle(v object.Value) (*sql.DB, error) {
	n, ok := v.(*object.Num)
	if !ok {
		return nil, errors.Errorf("expected a db handle (NUM), got %s", v.Type())
	}
	db, ok := r.domain.dbConns[int64(n.Value)]
	if !ok {
		return nil, errors.Errorf("invalid or closed db handle")
	}
	return db, nil
}

func twoStrs(name string, args []object.Value) (string, string, error) {
	a, ok := args[0].(*object.Str)
	if !ok {
		return "", "", errors.Errorf("%s: first argument must be STR, got %s", name, args[0].Type())
	}
	b, ok := args[1].(*object.Str)
	if !ok {
		return "", "", errors.Errorf("%s: second argument must be STR, got %s", name, args[1].Type())
	}
	return a.Value, b.Value, nil
}

// goToValue converts a decoded-JSON/database-scan Go value into a Value.
func goToValue(v any) object.Value {
	switch t := v.(type) {
	case nil:
		return &object.Nil{}
	case bool:
		return &object.Bool{Value: t}
	case float64:
		return &object.Num{Value: t}
	case int64:
		return &object.Num{Value: float64(t)}
	case []byte:
		return &object.Str{Value: string(t)}
	case string:
		return &object.Str{Value: t}
	case []any:
		elems := make([]object.Value, len(t))
		for i, e := range t {
			elems[i] = goToValue(e)
		}
		return &object.List{Elements: elems}
	case map[string]any:
		pairs := make(map[string]object.Value, len(t))
		for k, e := range t {
			pairs[k] = goToValue(e)
		}
		return &object.Map{Pairs: pairs}
	default:
		return &object.Str{Value: ""}
	}
}

// valueToGo converts a Value into a plain Go value suitable for
// json.Marshal.
func valueToGo(v object.Value) any {
	switch t := v.(type) {
	case *object.Nil:
		return nil
	case *object.Bool:
		return t.Value
	case *object.Num:
		return t.Value
	case *object.Str:
		return t.Value
	case *object.List:
		out := make([]any, len(t.Elements))
		for i, e := range t.Elements {
			out[i] = valueToGo(e)
		}
		return out
	case *object.Map:
		out := make(map[string]any, len(t.Pairs))
		for k, e := range t.Pairs {
			out[k] = valueToGo(e)
		}
		return out
	case *object.QuoteVal:
		if inner, ok := t.Payload.(object.Value); ok {
			return valueToGo(inner)
		}
		return v.Inspect()
	default:
		return v.Inspect()
	}
}
