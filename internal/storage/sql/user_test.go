package sql

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"generic error", errors.New("connection reset"), false},
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"postgres unique violation", &pq.Error{Code: "23505"}, true},
		{"postgres other error", &pq.Error{Code: "40001"}, false},
		{"mysql duplicate entry", &mysqldriver.MySQLError{Number: 1062}, true},
		{"mysql other error", &mysqldriver.MySQLError{Number: 1213}, false},
		{"wrapped postgres violation", fmt.Errorf("create: %w", &pq.Error{Code: "23505"}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKey(tt.err))
		})
	}
}
