// Package directory holds the connection settings for an external LDAP
// directory and the outcomes of connection probes against it.
package directory

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/adimka/admin-console-beta/internal/domain"
)

// EncryptionMethod selects how the directory connection is secured.
type EncryptionMethod string

const (
	EncryptionNone     EncryptionMethod = "none"
	EncryptionLDAPS    EncryptionMethod = "ldaps"
	EncryptionStartTLS EncryptionMethod = "start_tls"
)

// IsValid returns true if the method is one of the defined constants.
func (m EncryptionMethod) IsValid() bool {
	switch m {
	case EncryptionNone, EncryptionLDAPS, EncryptionStartTLS:
		return true
	default:
		return false
	}
}

// BindMethod selects how the bind user authenticates.
type BindMethod string

const (
	BindSimple    BindMethod = "simple"
	BindDigestMD5 BindMethod = "digest_md5"
)

// IsValid returns true if the method is one of the defined constants.
func (m BindMethod) IsValid() bool {
	switch m {
	case BindSimple, BindDigestMD5:
		return true
	default:
		return false
	}
}

// UseCase declares what the directory is used for. It decides which
// attributes of the configuration are mandatory.
type UseCase string

const (
	UseCaseAuthentication                  UseCase = "authentication"
	UseCaseAttributeStore                  UseCase = "attribute_store"
	UseCaseAuthenticationAndAttributeStore UseCase = "authentication_and_attribute_store"
)

// IsValid returns true if the use case is one of the defined constants.
func (u UseCase) IsValid() bool {
	switch u {
	case UseCaseAuthentication, UseCaseAttributeStore, UseCaseAuthenticationAndAttributeStore:
		return true
	default:
		return false
	}
}

// hostPattern accepts DNS names and IPv4 literals.
var hostPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.-]*$`)

// Config is an immutable directory connection configuration. Values are
// produced by a Builder, which validates them; a zero Config is not usable.
type Config struct {
	hostName          string
	port              int
	encryption        EncryptionMethod
	bindUser          string
	bindPassword      string
	bindMethod        BindMethod
	realm             string
	baseUserDN        string
	baseGroupDN       string
	userNameAttribute string
	useCase           UseCase
}

func (c Config) HostName() string             { return c.hostName }
func (c Config) Port() int                    { return c.port }
func (c Config) Encryption() EncryptionMethod { return c.encryption }
func (c Config) BindUser() string             { return c.bindUser }
func (c Config) BindPassword() string         { return c.bindPassword }
func (c Config) BindMethod() BindMethod       { return c.bindMethod }
func (c Config) Realm() string                { return c.realm }
func (c Config) BaseUserDN() string           { return c.baseUserDN }
func (c Config) BaseGroupDN() string          { return c.baseGroupDN }
func (c Config) UserNameAttribute() string    { return c.userNameAttribute }
func (c Config) UseCase() UseCase             { return c.useCase }

// LogValue implements slog.LogValuer. The bind password is never logged.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", c.hostName),
		slog.Int("port", c.port),
		slog.String("encryption", string(c.encryption)),
		slog.String("bind_user", c.bindUser),
		slog.String("bind_method", string(c.bindMethod)),
		slog.String("use_case", string(c.useCase)),
	)
}

// Builder assembles a Config. Setters overwrite; Build validates the
// accumulated values and yields the finished immutable Config.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder with no defaults applied.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) HostName(host string) *Builder {
	b.cfg.hostName = host
	return b
}

func (b *Builder) Port(port int) *Builder {
	b.cfg.port = port
	return b
}

func (b *Builder) Encryption(m EncryptionMethod) *Builder {
	b.cfg.encryption = m
	return b
}

func (b *Builder) BindUser(user, password string) *Builder {
	b.cfg.bindUser = user
	b.cfg.bindPassword = password
	return b
}

func (b *Builder) BindMethod(m BindMethod) *Builder {
	b.cfg.bindMethod = m
	return b
}

func (b *Builder) Realm(realm string) *Builder {
	b.cfg.realm = realm
	return b
}

func (b *Builder) BaseUserDN(dn string) *Builder {
	b.cfg.baseUserDN = dn
	return b
}

func (b *Builder) BaseGroupDN(dn string) *Builder {
	b.cfg.baseGroupDN = dn
	return b
}

func (b *Builder) UserNameAttribute(attr string) *Builder {
	b.cfg.userNameAttribute = attr
	return b
}

func (b *Builder) UseCase(u UseCase) *Builder {
	b.cfg.useCase = u
	return b
}

// Build validates the accumulated values and returns the finished Config.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details when any rule fails.
func (b *Builder) Build() (Config, error) {
	fields := make(map[string]string)

	if strings.TrimSpace(b.cfg.hostName) == "" {
		fields["host_name"] = "is required"
	} else if !hostPattern.MatchString(b.cfg.hostName) {
		fields["host_name"] = "is not a valid hostname"
	}

	if b.cfg.port < 1 || b.cfg.port > 65535 {
		fields["port"] = "must be between 1 and 65535"
	}

	if !b.cfg.encryption.IsValid() {
		fields["encryption"] = "must be one of: none, ldaps, start_tls"
	}

	if !b.cfg.bindMethod.IsValid() {
		fields["bind_method"] = "must be one of: simple, digest_md5"
	}
	if strings.TrimSpace(b.cfg.bindUser) == "" {
		fields["bind_user"] = "is required"
	}
	if b.cfg.bindPassword == "" {
		fields["bind_user_password"] = "is required"
	}
	if b.cfg.bindMethod == BindDigestMD5 && strings.TrimSpace(b.cfg.realm) == "" {
		fields["realm"] = "is required for digest_md5 binds"
	}

	if !b.cfg.useCase.IsValid() {
		fields["use_case"] = "must be one of: authentication, attribute_store, authentication_and_attribute_store"
	}

	// Attribute lookups need to know where and what to search.
	if b.cfg.useCase == UseCaseAttributeStore || b.cfg.useCase == UseCaseAuthenticationAndAttributeStore {
		if strings.TrimSpace(b.cfg.baseUserDN) == "" {
			fields["base_user_dn"] = "is required for attribute store use cases"
		}
		if strings.TrimSpace(b.cfg.baseGroupDN) == "" {
			fields["base_group_dn"] = "is required for attribute store use cases"
		}
		if strings.TrimSpace(b.cfg.userNameAttribute) == "" {
			fields["user_name_attribute"] = "is required for attribute store use cases"
		}
	}

	if len(fields) > 0 {
		return Config{}, &domain.ValidationError{Fields: fields}
	}
	return b.cfg, nil
}
