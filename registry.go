/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package datamapper

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/datamapper/database"
	"github.com/tomoncle/datamapper/errors"
	"github.com/tomoncle/datamapper/naming"
	"github.com/tomoncle/datamapper/record"
	"github.com/tomoncle/datamapper/repository"
)

// Registry constructs services on first lookup and hands out the same
// instance afterwards. It replaces process-wide service singletons: create
// one at startup and pass it to whoever needs services.
type Registry struct {
	db         bun.IDB
	tables     database.TableRegistry
	timestamps database.TimestampConfig
	logger     database.Logger
	closer     func() error

	mu       sync.Mutex
	services map[string]interface{}
}

type RegistryOption func(*Registry)

// WithTables declares tables so their metadata is not introspected.
func WithTables(tables ...database.TableConfig) RegistryOption {
	return func(r *Registry) {
		for _, t := range tables {
			r.tables.Register(t)
		}
	}
}

// WithTimestampColumns overrides the created/updated column names.
func WithTimestampColumns(ts database.TimestampConfig) RegistryOption {
	return func(r *Registry) { r.timestamps = ts }
}

func WithLogger(logger database.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry returns a registry over db. The caller keeps ownership of db.
func NewRegistry(db bun.IDB, opts ...RegistryOption) *Registry {
	r := &Registry{
		db:         db,
		tables:     database.NewTableRegistry(),
		timestamps: database.DefaultConfig().Timestamps,
		logger:     database.GetLogger(),
		services:   make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open connects using cfg and returns a registry that owns the connection.
// Tables and timestamp columns come from cfg.
func Open(ctx context.Context, cfg *database.Config, opts ...RegistryOption) (*Registry, error) {
	factory := database.NewDatabaseFactory()
	if _, err := factory.CreateFromConfig(cfg); err != nil {
		return nil, err
	}
	if err := factory.InitializeDatabase(ctx); err != nil {
		return nil, err
	}

	opts = append([]RegistryOption{
		WithTables(factory.Tables().Tables()...),
		WithTimestampColumns(cfg.Timestamps),
	}, opts...)
	r := NewRegistry(factory.GetDB(), opts...)
	r.closer = factory.Close
	return r, nil
}

// DB returns the database the registry's services run against.
func (r *Registry) DB() bun.IDB { return r.db }

// Close releases the connection if the registry opened it.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services = make(map[string]interface{})
	if r.closer == nil {
		return nil
	}
	closer := r.closer
	r.closer = nil
	return closer()
}

// ServiceOption customizes a service at construction.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	table   string
	gateway []repository.Option
}

// WithTable overrides the conventional table name of a service.
func WithTable(name string) ServiceOption {
	return func(o *serviceOptions) { o.table = name }
}

// WithGatewayOptions passes options to the service's table gateway.
func WithGatewayOptions(opts ...repository.Option) ServiceOption {
	return func(o *serviceOptions) { o.gateway = append(o.gateway, opts...) }
}

// Lookup returns the service registered under name, constructing it on the
// first call. The table is naming.TableName(name) unless WithTable says
// otherwise; a table that is neither declared nor present in the database
// fails with errors.ErrGatewayNotConfigured. Options and factory only apply
// to the first call for a name. A nil factory is rejected.
func Lookup[T record.Model](ctx context.Context, r *Registry, name string, factory record.Factory[T], opts ...ServiceOption) (Service[T], error) {
	if factory == nil {
		return nil, fmt.Errorf("service %s needs an object factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.services[name]; ok {
		svc, ok := existing.(Service[T])
		if !ok {
			return nil, fmt.Errorf("service %s is registered with a different object type", name)
		}
		return svc, nil
	}

	o := serviceOptions{table: naming.TableName(name)}
	for _, opt := range opts {
		opt(&o)
	}

	info, strategy, err := r.describe(ctx, name, o.table)
	if err != nil {
		return nil, err
	}

	gatewayOpts := append([]repository.Option{
		repository.WithTimestamps(r.timestamps.Created, r.timestamps.Updated),
		repository.WithKeyStrategy(strategy),
		repository.WithLogger(r.logger),
	}, o.gateway...)
	gateway := repository.NewTableGateway(r.db, info, gatewayOpts...)

	svc := newBaseServiceImpl(name, gateway, factory, r.logger)
	r.services[name] = Service[T](svc)
	r.logger.Debug("service registered", "service", name, "table", info.Name, "primary_keys", info.PrimaryKeys)
	return svc, nil
}

// Objects looks up a service producing plain *record.Object values.
func Objects(ctx context.Context, r *Registry, name string, opts ...ServiceOption) (Service[*record.Object], error) {
	return Lookup(ctx, r, name, record.ObjectFactory, opts...)
}

// describe resolves the metadata of table, preferring declared values over
// introspected ones.
func (r *Registry) describe(ctx context.Context, service, table string) (repository.TableInfo, string, error) {
	declared, ok := r.tables.Lookup(table)
	if ok && declared.Complete() {
		return repository.TableInfo{
			Name:        table,
			PrimaryKeys: declared.PrimaryKeys,
			Columns:     declared.Columns,
		}, declared.KeyStrategy, nil
	}

	info, err := repository.Describe(ctx, r.db, table)
	if err != nil {
		if database.IsNoTable(err) {
			return info, "", errors.NewGatewayNotConfiguredError(service, table, err)
		}
		return info, "", err
	}
	if ok {
		if len(declared.PrimaryKeys) > 0 {
			info.PrimaryKeys = declared.PrimaryKeys
		}
		if len(declared.Columns) > 0 {
			info.Columns = declared.Columns
		}
	}
	if len(info.PrimaryKeys) == 0 {
		return info, "", errors.NewGatewayNotConfiguredError(service, table, fmt.Errorf("table %s has no primary key", table))
	}
	return info, declared.KeyStrategy, nil
}
