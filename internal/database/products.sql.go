// source: products.sql

package database

import (
	"context"
)

const getProductByBarcode = `-- name: GetProductByBarcode :one
SELECT id, barcode, description, quantity, created_at, updated_at
FROM products
WHERE barcode = $1
`

func (q *Queries) GetProductByBarcode(ctx context.Context, barcode string) (Product, error) {
	row := q.db.QueryRow(ctx, getProductByBarcode, barcode)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Barcode,
		&i.Description,
		&i.Quantity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getProduct = `-- name: GetProduct :one
SELECT id, barcode, description, quantity, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Barcode,
		&i.Description,
		&i.Quantity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertProduct = `-- name: InsertProduct :one
INSERT INTO products (barcode, description, quantity)
VALUES ($1, $2, $3)
RETURNING id
`

type InsertProductParams struct {
	Barcode     string
	Description string
	Quantity    int64
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertProduct, arg.Barcode, arg.Description, arg.Quantity)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateProductQuantity = `-- name: UpdateProductQuantity :execrows
UPDATE products
SET quantity = $2, updated_at = now()
WHERE id = $1
`

type UpdateProductQuantityParams struct {
	ID       int64
	Quantity int64
}

func (q *Queries) UpdateProductQuantity(ctx context.Context, arg UpdateProductQuantityParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateProductQuantity, arg.ID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateProduct = `-- name: UpdateProduct :execrows
UPDATE products
SET description = $2, quantity = $3, updated_at = now()
WHERE id = $1
`

type UpdateProductParams struct {
	ID          int64
	Description string
	Quantity    int64
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateProduct, arg.ID, arg.Description, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listProductsByBarcodes = `-- name: ListProductsByBarcodes :many
SELECT id, barcode, description, quantity, created_at, updated_at
FROM products
WHERE barcode = ANY($1::text[])
`

func (q *Queries) ListProductsByBarcodes(ctx context.Context, barcodes []string) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProductsByBarcodes, barcodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Barcode,
			&i.Description,
			&i.Quantity,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listProducts = `-- name: ListProducts :many
SELECT id, barcode, description, quantity, created_at, updated_at
FROM products
WHERE $1::text = ''
   OR barcode = $1::text
   OR strpos(lower(description), lower($1::text)) > 0
ORDER BY id
LIMIT $2 OFFSET $3
`

type ListProductsParams struct {
	Search string
	Limit  int32
	Offset int32
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Barcode,
			&i.Description,
			&i.Quantity,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listAllProducts = `-- name: ListAllProducts :many
SELECT id, barcode, description, quantity, created_at, updated_at
FROM products
ORDER BY id
`

func (q *Queries) ListAllProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listAllProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Barcode,
			&i.Description,
			&i.Quantity,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getStockTotals = `-- name: GetStockTotals :one
SELECT count(*)::bigint AS products, coalesce(sum(quantity), 0)::bigint AS units
FROM products
`

type GetStockTotalsRow struct {
	Products int64
	Units    int64
}

func (q *Queries) GetStockTotals(ctx context.Context) (GetStockTotalsRow, error) {
	row := q.db.QueryRow(ctx, getStockTotals)
	var i GetStockTotalsRow
	err := row.Scan(&i.Products, &i.Units)
	return i, err
}
