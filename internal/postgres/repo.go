package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repo implements trx.Store on top of two tables; line items live in a
// JSONB column so an invoice is still read and written as one row.
type Repo struct {
	DB  *pgxpool.Pool
	Now func() time.Time
}

var _ trx.Store = (*Repo)(nil)

func (r *Repo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// numeric dikirim sebagai text lalu di-cast, supaya presisi decimal utuh.
const productCols = `id, name, price::text, time_stamp, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (trx.Product, error) {
	var p trx.Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &price, &p.TimeStamp, &p.CreatedAt); err != nil {
		return trx.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return trx.Product{}, fmt.Errorf("decode price: %w", err)
	}
	p.Price = d
	return p, nil
}

func (r *Repo) CreateProduct(ctx context.Context, p trx.Product) (trx.Product, error) {
	now := r.now()
	p.ID = trx.NewID()
	p.TimeStamp = now
	p.CreatedAt = now
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, price, time_stamp, created_at)
		VALUES ($1, $2, $3::text::numeric, $4, $5)`,
		p.ID, p.Name, p.Price.String(), p.TimeStamp, p.CreatedAt)
	if err != nil {
		return trx.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]trx.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []trx.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id string) (trx.Product, error) {
	if !trx.ValidID(id) {
		return trx.Product{}, trx.ErrInvalidID
	}
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return trx.Product{}, trx.ErrNotFound
	}
	return p, err
}

func (r *Repo) UpdateProduct(ctx context.Context, id string, patch trx.ProductPatch) (trx.Product, error) {
	if !trx.ValidID(id) {
		return trx.Product{}, trx.ErrInvalidID
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return trx.Product{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := scanProduct(tx.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return trx.Product{}, trx.ErrNotFound
	}
	if err != nil {
		return trx.Product{}, err
	}
	patch.Apply(&p, r.now())
	if _, err := tx.Exec(ctx, `
		UPDATE products SET name=$2, price=$3::text::numeric, time_stamp=$4 WHERE id=$1`,
		p.ID, p.Name, p.Price.String(), p.TimeStamp); err != nil {
		return trx.Product{}, fmt.Errorf("update product: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return trx.Product{}, err
	}
	return p, nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM products WHERE id=$1`, id)
}

func (r *Repo) Resolve(ctx context.Context, productID string) (trx.Resolution, error) {
	return trx.ProductResolver(r).Resolve(ctx, productID)
}

const invoiceCols = `id, customer, tanggal_terima, tanggal_selesai, down_payment::text, products, time_stamp, created_at`

func scanInvoice(row rowScanner) (trx.Invoice, error) {
	var (
		inv   trx.Invoice
		dp    string
		lines []byte
	)
	if err := row.Scan(&inv.ID, &inv.Customer, &inv.TanggalTerima, &inv.TanggalSelesai,
		&dp, &lines, &inv.TimeStamp, &inv.CreatedAt); err != nil {
		return trx.Invoice{}, err
	}
	d, err := decimal.NewFromString(dp)
	if err != nil {
		return trx.Invoice{}, fmt.Errorf("decode down_payment: %w", err)
	}
	inv.DownPayment = d
	if err := json.Unmarshal(lines, &inv.Products); err != nil {
		return trx.Invoice{}, fmt.Errorf("decode products: %w", err)
	}
	return inv, nil
}

func encodeLines(items []trx.LineItem) ([]byte, error) {
	if items == nil {
		items = []trx.LineItem{}
	}
	return json.Marshal(items)
}

func (r *Repo) CreateInvoice(ctx context.Context, inv trx.Invoice) (trx.Invoice, error) {
	now := r.now()
	inv.ID = trx.NewID()
	inv.TimeStamp = now
	inv.CreatedAt = now
	lines, err := encodeLines(inv.Products)
	if err != nil {
		return trx.Invoice{}, err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO invoices(id, customer, tanggal_terima, tanggal_selesai, down_payment, products, time_stamp, created_at)
		VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7, $8)`,
		inv.ID, inv.Customer, inv.TanggalTerima, inv.TanggalSelesai, inv.DownPayment.String(), lines, inv.TimeStamp, inv.CreatedAt)
	if err != nil {
		return trx.Invoice{}, fmt.Errorf("insert invoice: %w", err)
	}
	return inv, nil
}

func (r *Repo) ListInvoices(ctx context.Context) ([]trx.Invoice, error) {
	return r.queryInvoices(ctx, `SELECT `+invoiceCols+` FROM invoices ORDER BY created_at, id`)
}

func (r *Repo) InvoicesReferencing(ctx context.Context, productID string) ([]trx.Invoice, error) {
	probe, err := json.Marshal([]map[string]string{{"productId": productID}})
	if err != nil {
		return nil, err
	}
	return r.queryInvoices(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE products @> $1 ORDER BY created_at, id`, probe)
}

func (r *Repo) queryInvoices(ctx context.Context, sql string, args ...any) ([]trx.Invoice, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []trx.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *Repo) GetInvoice(ctx context.Context, id string) (trx.Invoice, error) {
	if !trx.ValidID(id) {
		return trx.Invoice{}, trx.ErrInvalidID
	}
	inv, err := scanInvoice(r.DB.QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return trx.Invoice{}, trx.ErrNotFound
	}
	return inv, err
}

func (r *Repo) UpdateInvoice(ctx context.Context, id string, patch trx.InvoicePatch) (trx.Invoice, error) {
	if !trx.ValidID(id) {
		return trx.Invoice{}, trx.ErrInvalidID
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return trx.Invoice{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inv, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return trx.Invoice{}, trx.ErrNotFound
	}
	if err != nil {
		return trx.Invoice{}, err
	}
	patch.Apply(&inv, r.now())
	lines, err := encodeLines(inv.Products)
	if err != nil {
		return trx.Invoice{}, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE invoices
		SET customer=$2, tanggal_terima=$3, tanggal_selesai=$4, down_payment=$5::text::numeric, products=$6, time_stamp=$7
		WHERE id=$1`,
		inv.ID, inv.Customer, inv.TanggalTerima, inv.TanggalSelesai, inv.DownPayment.String(), lines, inv.TimeStamp); err != nil {
		return trx.Invoice{}, fmt.Errorf("update invoice: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return trx.Invoice{}, err
	}
	return inv, nil
}

func (r *Repo) DeleteInvoice(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM invoices WHERE id=$1`, id)
}

func (r *Repo) deleteByID(ctx context.Context, sql, id string) error {
	if !trx.ValidID(id) {
		return trx.ErrInvalidID
	}
	ct, err := r.DB.Exec(ctx, sql, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return trx.ErrNotFound
	}
	return nil
}
