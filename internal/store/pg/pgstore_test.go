package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"partydesk.org/internal/party"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, party.Default()), mock
}

func descriptor(t *testing.T, slug string) *party.Descriptor {
	t.Helper()
	d, ok := party.Default().Lookup(slug)
	if !ok {
		t.Fatalf("descriptor %q missing", slug)
	}
	return d
}

func TestGetMapsNoRows(t *testing.T) {
	store, mock := newMockStore(t)
	d := descriptor(t, "country")

	mock.ExpectQuery(`SELECT id, isocode, name_en, name_th FROM country`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "isocode", "name_en", "name_th"}))

	if _, err := store.Get(context.Background(), d, 42); !errors.Is(err, party.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGetScansNullableFields(t *testing.T) {
	store, mock := newMockStore(t)
	d := descriptor(t, "country")

	mock.ExpectQuery(`SELECT id, isocode, name_en, name_th FROM country`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "isocode", "name_en", "name_th"}).
			AddRow(int64(1), "TH", "Thailand", nil))

	rec, err := store.Get(context.Background(), d, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.String("name_en") != "Thailand" {
		t.Errorf("name_en = %q", rec.String("name_en"))
	}
	if _, present := rec["name_th"]; present {
		t.Errorf("null column should be absent: %v", rec)
	}
}

func TestCreateSimpleEntity(t *testing.T) {
	store, mock := newMockStore(t)
	d := descriptor(t, "country")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO country`).
		WithArgs("TH", "Thailand", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectCommit()

	rec, err := store.Create(context.Background(), d, party.Record{
		"isocode": "TH", "name_en": "Thailand",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID() != 5 {
		t.Errorf("id = %d, want 5", rec.ID())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreatePartySubtypeAllocatesSupertypeRow(t *testing.T) {
	store, mock := newMockStore(t)
	d := descriptor(t, "team")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO party DEFAULT VALUES RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec(`INSERT INTO team`).
		WithArgs(int64(11), "Blue Team", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := store.Create(context.Background(), d, party.Record{"name_en": "Blue Team"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID() != 11 {
		t.Errorf("id = %d, want 11", rec.ID())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateDuplicateGuard(t *testing.T) {
	store, mock := newMockStore(t)
	d := descriptor(t, "passport")

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("AA123", int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := store.Create(context.Background(), d, party.Record{
		"passportnumber": "AA123", "citizenship_id": int64(4),
	})
	if !errors.Is(err, party.ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
}

func TestDuplicateGuardMatchesJointlyNullColumns(t *testing.T) {
	store, mock := newMockStore(t)
	d := descriptor(t, "citizenship")

	// thrudate is open-ended on both rows; NULL = NULL would never match,
	// so the guard must compare with IS NOT DISTINCT FROM.
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM citizenship WHERE person_id IS NOT DISTINCT FROM \$1 AND country_id IS NOT DISTINCT FROM \$2 AND fromdate IS NOT DISTINCT FROM \$3 AND thrudate IS NOT DISTINCT FROM \$4\)`).
		WithArgs(int64(7), int64(3), "2020-01-01", nil).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := store.Create(context.Background(), d, party.Record{
		"person_id": int64(7), "country_id": int64(3), "fromdate": "2020-01-01",
	})
	if !errors.Is(err, party.ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteReferencedGuard(t *testing.T) {
	store, mock := newMockStore(t)
	d := descriptor(t, "citizenship")

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM passport WHERE citizenship_id`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := store.Delete(context.Background(), d, 9); !errors.Is(err, party.ErrReferenced) {
		t.Fatalf("got %v, want ErrReferenced", err)
	}
}

func TestDeletePartySubtypeRemovesSupertypeRow(t *testing.T) {
	store, mock := newMockStore(t)
	d := descriptor(t, "team")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM team`).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM party`).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.Delete(context.Background(), d, 11); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteMissingRow(t *testing.T) {
	store, mock := newMockStore(t)
	d := descriptor(t, "country")

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM country`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Delete(context.Background(), d, 3); !errors.Is(err, party.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
