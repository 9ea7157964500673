package ffi

import (
	"math"
	"unicode/utf8"

	"github.com/halcyondb/halcyon-go/errors"
)

// Backend selects the database driver inside the native library.
type Backend int32

const (
	BackendInvalid Backend = iota
	BackendSQLite
	BackendMySQL
	BackendPostgres
)

var backendNames = [...]string{
	BackendInvalid:  "invalid",
	BackendSQLite:   "sqlite",
	BackendMySQL:    "mysql",
	BackendPostgres: "postgres",
}

func (b Backend) String() string {
	if b >= 0 && int(b) < len(backendNames) {
		return backendNames[b]
	}
	return "unknown"
}

// ConnectOptions describes one database connection. Validation is eager:
// a ConnectOptions that exists is encodable, the boundary never rejects one.
type ConnectOptions struct {
	Backend        Backend
	Name           string
	Host           string
	Port           uint16
	User           string
	Password       string
	MinConnections uint32
	MaxConnections uint32
}

// NewConnectOptions validates every field up front. Port must be in
// [1, 65535] and both pool bounds in [1, 2^32-1]; min must not exceed max.
func NewConnectOptions(backend Backend, name, host string, port uint32, user, password string, minConns, maxConns uint64) (*ConnectOptions, error) {
	if backend < BackendInvalid || backend > BackendPostgres {
		return nil, errors.InvalidEnum(errors.PhaseValidate, int32(backend), "backend")
	}
	if port == 0 || port > math.MaxUint16 {
		return nil, errors.OutOfRange(errors.PhaseValidate, "port", port, "[1, 65535]")
	}
	if minConns == 0 || minConns > math.MaxUint32 {
		return nil, errors.OutOfRange(errors.PhaseValidate, "min_connections", minConns, "[1, 2^32-1]")
	}
	if maxConns == 0 || maxConns > math.MaxUint32 {
		return nil, errors.OutOfRange(errors.PhaseValidate, "max_connections", maxConns, "[1, 2^32-1]")
	}
	if minConns > maxConns {
		return nil, errors.New(errors.PhaseValidate, errors.KindOutOfRange).
			Path("min_connections").
			Detail("min_connections %d exceeds max_connections %d", minConns, maxConns).
			Build()
	}
	for _, f := range []struct{ name, v string }{
		{"name", name}, {"host", host}, {"user", user}, {"password", password},
	} {
		if !utf8.ValidString(f.v) {
			return nil, errors.InvalidUTF8(errors.PhaseValidate, []string{f.name}, []byte(f.v))
		}
	}
	return &ConnectOptions{
		Backend:        backend,
		Name:           name,
		Host:           host,
		Port:           uint16(port),
		User:           user,
		Password:       password,
		MinConnections: uint32(minConns),
		MaxConnections: uint32(maxConns),
	}, nil
}

// StoreConnectOptions places the options block into library memory and
// returns its address.
func StoreConnectOptions(mem Memory, alloc Allocator, list *AllocationList, o *ConnectOptions) (uint32, error) {
	if o == nil {
		return 0, errors.InvalidData(errors.PhaseEncode, nil, "nil connect options")
	}
	addr, err := alloc.Alloc(optionsSize, optionsAlign)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, optionsSize, optionsAlign)
	}
	if list != nil {
		list.Add(addr, optionsSize, optionsAlign)
	}

	if err := mem.WriteU32(addr+optionsBackendOff, uint32(o.Backend)); err != nil {
		return 0, err
	}
	if err := storeBytesAt(mem, alloc, list, addr+optionsNameOff, []byte(o.Name), []string{"name"}); err != nil {
		return 0, err
	}
	if err := storeBytesAt(mem, alloc, list, addr+optionsHostOff, []byte(o.Host), []string{"host"}); err != nil {
		return 0, err
	}
	if err := mem.WriteU16(addr+optionsPortOff, o.Port); err != nil {
		return 0, err
	}
	if err := storeBytesAt(mem, alloc, list, addr+optionsUserOff, []byte(o.User), []string{"user"}); err != nil {
		return 0, err
	}
	if err := storeBytesAt(mem, alloc, list, addr+optionsPasswordOff, []byte(o.Password), []string{"password"}); err != nil {
		return 0, err
	}
	if err := mem.WriteU32(addr+optionsMinOff, o.MinConnections); err != nil {
		return 0, err
	}
	if err := mem.WriteU32(addr+optionsMaxOff, o.MaxConnections); err != nil {
		return 0, err
	}
	return addr, nil
}

// LoadConnectOptions reads an options block back out of library memory.
// Used by in-process library implementations and tests; a real native
// library reads the layout directly.
func LoadConnectOptions(mem Memory, addr uint32) (*ConnectOptions, error) {
	rawBackend, err := mem.ReadU32(addr + optionsBackendOff)
	if err != nil {
		return nil, err
	}
	name, err := LoadString(mem, addr+optionsNameOff)
	if err != nil {
		return nil, err
	}
	host, err := LoadString(mem, addr+optionsHostOff)
	if err != nil {
		return nil, err
	}
	port, err := mem.ReadU16(addr + optionsPortOff)
	if err != nil {
		return nil, err
	}
	user, err := LoadString(mem, addr+optionsUserOff)
	if err != nil {
		return nil, err
	}
	password, err := LoadString(mem, addr+optionsPasswordOff)
	if err != nil {
		return nil, err
	}
	minConns, err := mem.ReadU32(addr + optionsMinOff)
	if err != nil {
		return nil, err
	}
	maxConns, err := mem.ReadU32(addr + optionsMaxOff)
	if err != nil {
		return nil, err
	}
	return &ConnectOptions{
		Backend:        Backend(int32(rawBackend)),
		Name:           name,
		Host:           host,
		Port:           port,
		User:           user,
		Password:       password,
		MinConnections: minConns,
		MaxConnections: maxConns,
	}, nil
}
