package mongox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repo is the document-store backend. Satu invoice = satu dokumen, jadi
// tulis/baca per invoice atomik; resolve product tetap baca terpisah.
type Repo struct {
	Products *mongo.Collection
	Invoices *mongo.Collection
	Now      func() time.Time
}

var _ trx.Store = (*Repo)(nil)

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{
		Products: db.Collection(CollProducts),
		Invoices: db.Collection(CollInvoices),
	}
}

// EnsureIndexes creates the sort and reverse-lookup indexes.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.Products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}},
	}); err != nil {
		return fmt.Errorf("product index: %w", err)
	}
	if _, err := r.Invoices.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "products.productId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("invoice index: %w", err)
	}
	return nil
}

func (r *Repo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	// mongo simpan millisecond
	return time.Now().UTC().Truncate(time.Millisecond)
}

var byCreated = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func (r *Repo) CreateProduct(ctx context.Context, p trx.Product) (trx.Product, error) {
	now := r.now()
	p.ID = trx.NewID()
	p.TimeStamp = now
	p.CreatedAt = now
	doc, err := newProductDoc(p)
	if err != nil {
		return trx.Product{}, err
	}
	if _, err := r.Products.InsertOne(ctx, doc); err != nil {
		return trx.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]trx.Product, error) {
	cur, err := r.Products.Find(ctx, bson.D{}, options.Find().SetSort(byCreated))
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]trx.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.product()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Repo) GetProduct(ctx context.Context, id string) (trx.Product, error) {
	o, err := oid(id)
	if err != nil {
		return trx.Product{}, err
	}
	var doc productDoc
	if err := r.Products.FindOne(ctx, bson.M{"_id": o}).Decode(&doc); err != nil {
		return trx.Product{}, notFound(err)
	}
	return doc.product()
}

func (r *Repo) UpdateProduct(ctx context.Context, id string, patch trx.ProductPatch) (trx.Product, error) {
	o, err := oid(id)
	if err != nil {
		return trx.Product{}, err
	}
	set := bson.M{"timeStamp": r.now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Price != nil {
		price, err := toD128(*patch.Price)
		if err != nil {
			return trx.Product{}, err
		}
		set["price"] = price
	}
	var doc productDoc
	if err := r.Products.FindOneAndUpdate(ctx, bson.M{"_id": o}, bson.M{"$set": set}, afterUpdate()).Decode(&doc); err != nil {
		return trx.Product{}, notFound(err)
	}
	return doc.product()
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	return deleteByID(ctx, r.Products, id)
}

func (r *Repo) Resolve(ctx context.Context, productID string) (trx.Resolution, error) {
	return trx.ProductResolver(r).Resolve(ctx, productID)
}

func (r *Repo) CreateInvoice(ctx context.Context, inv trx.Invoice) (trx.Invoice, error) {
	now := r.now()
	inv.ID = trx.NewID()
	inv.TimeStamp = now
	inv.CreatedAt = now
	doc, err := newInvoiceDoc(inv)
	if err != nil {
		return trx.Invoice{}, err
	}
	if _, err := r.Invoices.InsertOne(ctx, doc); err != nil {
		return trx.Invoice{}, fmt.Errorf("insert invoice: %w", err)
	}
	return doc.invoice()
}

func (r *Repo) ListInvoices(ctx context.Context) ([]trx.Invoice, error) {
	return r.findInvoices(ctx, bson.D{})
}

func (r *Repo) InvoicesReferencing(ctx context.Context, productID string) ([]trx.Invoice, error) {
	o, err := oid(productID)
	if err != nil {
		return nil, err
	}
	return r.findInvoices(ctx, bson.M{"products.productId": o})
}

func (r *Repo) findInvoices(ctx context.Context, filter any) ([]trx.Invoice, error) {
	cur, err := r.Invoices.Find(ctx, filter, options.Find().SetSort(byCreated))
	if err != nil {
		return nil, err
	}
	var docs []invoiceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]trx.Invoice, 0, len(docs))
	for _, d := range docs {
		inv, err := d.invoice()
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

func (r *Repo) GetInvoice(ctx context.Context, id string) (trx.Invoice, error) {
	o, err := oid(id)
	if err != nil {
		return trx.Invoice{}, err
	}
	var doc invoiceDoc
	if err := r.Invoices.FindOne(ctx, bson.M{"_id": o}).Decode(&doc); err != nil {
		return trx.Invoice{}, notFound(err)
	}
	return doc.invoice()
}

func (r *Repo) UpdateInvoice(ctx context.Context, id string, patch trx.InvoicePatch) (trx.Invoice, error) {
	o, err := oid(id)
	if err != nil {
		return trx.Invoice{}, err
	}
	set, err := invoiceSet(patch, r.now())
	if err != nil {
		return trx.Invoice{}, err
	}
	var doc invoiceDoc
	if err := r.Invoices.FindOneAndUpdate(ctx, bson.M{"_id": o}, bson.M{"$set": set}, afterUpdate()).Decode(&doc); err != nil {
		return trx.Invoice{}, notFound(err)
	}
	return doc.invoice()
}

// invoiceSet builds the $set document; products diganti utuh, bukan merge.
func invoiceSet(patch trx.InvoicePatch, now time.Time) (bson.M, error) {
	set := bson.M{"timeStamp": now}
	if patch.Customer != nil {
		set["customer"] = *patch.Customer
	}
	if patch.TanggalTerima != nil {
		set["tanggalTerima"] = *patch.TanggalTerima
	}
	if patch.TanggalSelesai != nil {
		set["tanggalSelesai"] = *patch.TanggalSelesai
	}
	if patch.DownPayment != nil {
		dp, err := toD128(*patch.DownPayment)
		if err != nil {
			return nil, err
		}
		set["downPayment"] = dp
	}
	if patch.Products != nil {
		lines, err := newLineDocs(patch.Products)
		if err != nil {
			return nil, err
		}
		set["products"] = lines
	}
	return set, nil
}

func (r *Repo) DeleteInvoice(ctx context.Context, id string) error {
	return deleteByID(ctx, r.Invoices, id)
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	o, err := oid(id)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": o})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return trx.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return trx.ErrNotFound
	}
	return err
}
