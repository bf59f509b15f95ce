package query

// Re-export read models from readmodel package for backward compatibility
import "github.com/example/bookshop-event-driven/internal/readmodel"

type BookReadModel = readmodel.BookReadModel
type CartItemReadModel = readmodel.CartItemReadModel
type CartReadModel = readmodel.CartReadModel
type BillLineReadModel = readmodel.BillLineReadModel
type BillReadModel = readmodel.BillReadModel
type InventoryReadModel = readmodel.InventoryReadModel
type UserReadModel = readmodel.UserReadModel
type CategoryReadModel = readmodel.CategoryReadModel
type PromoEventReadModel = readmodel.PromoEventReadModel
type PromoUsageReadModel = readmodel.PromoUsageReadModel
