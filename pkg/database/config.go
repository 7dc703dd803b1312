// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"fmt"
	"time"
)

const (
	dataTablePrefix = "t_"
	defaultSlowSQL  = time.Second
)

// Database holds the mysql connection settings.
type Database struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	OutPut       bool // log every statement through the zap adapter
	AutoMigrate  bool
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int // seconds
	MaxIdleTime  int // seconds
	// Replicas take plain SELECTs when set; they share the primary's
	// credentials and schema name.
	Replicas []Replica
}

type Replica struct {
	Host string
	Port string
}

func (d *Database) SetDefaults() {
	if d.Host == "" {
		d.Host = "127.0.0.1"
	}
	if d.Port == "" {
		d.Port = "3306"
	}
	if d.MaxOpenConns <= 0 {
		d.MaxOpenConns = 50
	}
	if d.MaxIdleConns <= 0 {
		d.MaxIdleConns = 10
	}
}

// DSN renders the go-sql-driver connection string.
func (d *Database) DSN() string {
	return d.dsn(d.Host, d.Port)
}

// ReplicaDSNs returns one DSN per configured replica.
func (d *Database) ReplicaDSNs() []string {
	dsns := make([]string, 0, len(d.Replicas))
	for _, r := range d.Replicas {
		port := r.Port
		if port == "" {
			port = d.Port
		}
		dsns = append(dsns, d.dsn(r.Host, port))
	}
	return dsns
}

func (d *Database) dsn(host, port string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, host, port, d.DBName)
}

func GetConnMaxLifetime(maxLifetime int) time.Duration {
	if maxLifetime > 0 {
		return time.Duration(maxLifetime) * time.Second
	}
	return 300 * time.Second
}

func GetConnMaxIdleTime(maxIdleTime int) time.Duration {
	if maxIdleTime > 0 {
		return time.Duration(maxIdleTime) * time.Second
	}
	return 60 * time.Second
}
