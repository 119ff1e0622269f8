package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/adapters/persistence"
	asncommands "github.com/harborline/omscore/internal/application/asn/commands"
	asnqueries "github.com/harborline/omscore/internal/application/asn/queries"
	"github.com/harborline/omscore/internal/application/common"
	invcommands "github.com/harborline/omscore/internal/application/inventory/commands"
	invqueries "github.com/harborline/omscore/internal/application/inventory/queries"
	ordercommands "github.com/harborline/omscore/internal/application/order/commands"
	orderqueries "github.com/harborline/omscore/internal/application/order/queries"
	returnscommands "github.com/harborline/omscore/internal/application/returns/commands"
	returnsqueries "github.com/harborline/omscore/internal/application/returns/queries"
	wocommands "github.com/harborline/omscore/internal/application/workorder/commands"
	woqueries "github.com/harborline/omscore/internal/application/workorder/queries"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/internal/infrastructure/config"
)

// buildMediator constructs the repositories and every command and query
// handler, then registers them on a mediator with the standard middleware
// chain: validation, metrics, logging.
func buildMediator(
	db *gorm.DB,
	publisher common.EventPublisher,
	enqueuer common.OutboxEnqueuer,
	clock shared.Clock,
	commandMetrics common.CommandMetrics,
	logger zerolog.Logger,
	cfg *config.Config,
) (common.Mediator, error) {
	txManager := persistence.NewGormTransactionManager(db)
	balances := persistence.NewGormBalanceRepository(db)
	reservations := persistence.NewGormReservationRepository(db)
	txnLog := persistence.NewGormTransactionLogRepository(db)
	orders := persistence.NewGormOrderRepository(db)
	workOrders := persistence.NewGormWorkOrderRepository(db)
	costing := persistence.NewGormCostingRepository(db)
	asns := persistence.NewGormASNRepository(db)
	rets := persistence.NewGormReturnRepository(db)
	warranties := persistence.NewGormWarrantyRepository(db)

	med := common.NewMediator()
	med.Use(common.ValidationMiddleware(validator.New()))
	med.Use(common.MetricsMiddleware(commandMetrics))
	med.Use(common.LoggingMiddleware(logger))

	var firstErr error
	register := func(name string, err error) {
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to register %s handler: %w", name, err)
		}
	}

	// Inventory commands
	register("adjust inventory", common.RegisterHandler[*invcommands.AdjustInventoryCommand](med,
		invcommands.NewAdjustInventoryHandler(txManager, balances, txnLog, enqueuer, publisher, clock, cfg.Inventory.SafetyStockThreshold)))
	register("reserve inventory", common.RegisterHandler[*invcommands.ReserveInventoryCommand](med,
		invcommands.NewReserveInventoryHandler(txManager, balances, reservations, enqueuer, publisher, clock)))
	register("release inventory", common.RegisterHandler[*invcommands.ReleaseInventoryCommand](med,
		invcommands.NewReleaseInventoryHandler(txManager, balances, reservations, enqueuer, publisher, clock)))
	register("allocate inventory", common.RegisterHandler[*invcommands.AllocateInventoryCommand](med,
		invcommands.NewAllocateInventoryHandler(txManager, balances, reservations, txnLog, enqueuer, publisher, clock)))
	register("deallocate inventory", common.RegisterHandler[*invcommands.DeallocateInventoryCommand](med,
		invcommands.NewDeallocateInventoryHandler(txManager, balances, reservations, enqueuer, publisher, clock)))
	register("transfer inventory", common.RegisterHandler[*invcommands.TransferInventoryCommand](med,
		invcommands.NewTransferInventoryHandler(txManager, balances, txnLog, enqueuer, publisher, clock)))
	register("cycle count", common.RegisterHandler[*invcommands.CycleCountCommand](med,
		invcommands.NewCycleCountHandler(txManager, balances, txnLog, enqueuer, publisher, clock)))
	register("receive inventory", common.RegisterHandler[*invcommands.ReceiveInventoryCommand](med,
		invcommands.NewReceiveInventoryHandler(txManager, balances, txnLog, txnLog, enqueuer, publisher, clock)))

	// Inventory queries
	register("balance query", common.RegisterHandler[*invqueries.BalanceQuery](med,
		invqueries.NewBalanceQueryHandler(balances, reservations)))
	register("item snapshot query", common.RegisterHandler[*invqueries.ItemSnapshotQuery](med,
		invqueries.NewItemSnapshotQueryHandler(balances)))
	register("low stock query", common.RegisterHandler[*invqueries.LowStockQuery](med,
		invqueries.NewLowStockQueryHandler(balances)))
	register("stock movements query", common.RegisterHandler[*invqueries.StockMovementsQuery](med,
		invqueries.NewStockMovementsQueryHandler(txnLog)))

	// Order commands
	register("create order", common.RegisterHandler[*ordercommands.CreateOrderCommand](med,
		ordercommands.NewCreateOrderHandler(txManager, orders, enqueuer, publisher, clock)))
	register("change order status", common.RegisterHandler[*ordercommands.ChangeOrderStatusCommand](med,
		ordercommands.NewChangeOrderStatusHandler(txManager, orders, enqueuer, publisher, clock)))
	register("add order item", common.RegisterHandler[*ordercommands.AddOrderItemCommand](med,
		ordercommands.NewAddOrderItemHandler(txManager, orders, enqueuer, publisher, clock)))
	register("remove order item", common.RegisterHandler[*ordercommands.RemoveOrderItemCommand](med,
		ordercommands.NewRemoveOrderItemHandler(txManager, orders, enqueuer, publisher, clock)))
	register("add order note", common.RegisterHandler[*ordercommands.AddOrderNoteCommand](med,
		ordercommands.NewAddOrderNoteHandler(txManager, orders, enqueuer, publisher, clock)))
	register("update order address", common.RegisterHandler[*ordercommands.UpdateOrderAddressCommand](med,
		ordercommands.NewUpdateOrderAddressHandler(txManager, orders, enqueuer, publisher, clock)))
	register("update payment method", common.RegisterHandler[*ordercommands.UpdatePaymentMethodCommand](med,
		ordercommands.NewUpdatePaymentMethodHandler(txManager, orders, enqueuer, publisher, clock)))
	register("record payment", common.RegisterHandler[*ordercommands.RecordPaymentCommand](med,
		ordercommands.NewRecordPaymentHandler(txManager, orders, enqueuer, publisher, clock)))

	// Order queries
	register("get order query", common.RegisterHandler[*orderqueries.GetOrderQuery](med,
		orderqueries.NewGetOrderQueryHandler(orders)))
	register("order history query", common.RegisterHandler[*orderqueries.OrderHistoryQuery](med,
		orderqueries.NewOrderHistoryQueryHandler(orders)))
	register("order payments query", common.RegisterHandler[*orderqueries.OrderPaymentsQuery](med,
		orderqueries.NewOrderPaymentsQueryHandler(orders)))

	// Work order commands
	register("create work order", common.RegisterHandler[*wocommands.CreateWorkOrderCommand](med,
		wocommands.NewCreateWorkOrderHandler(txManager, workOrders, enqueuer, publisher, clock)))
	register("transition work order", common.RegisterHandler[*wocommands.TransitionWorkOrderCommand](med,
		wocommands.NewTransitionWorkOrderHandler(txManager, workOrders, enqueuer, publisher, clock)))
	register("assign work order", common.RegisterHandler[*wocommands.AssignWorkOrderCommand](med,
		wocommands.NewAssignWorkOrderHandler(txManager, workOrders, enqueuer, publisher, clock)))
	register("unassign work order", common.RegisterHandler[*wocommands.UnassignWorkOrderCommand](med,
		wocommands.NewUnassignWorkOrderHandler(txManager, workOrders, enqueuer, publisher, clock)))
	register("add work order note", common.RegisterHandler[*wocommands.AddWorkOrderNoteCommand](med,
		wocommands.NewAddWorkOrderNoteHandler(txManager, workOrders, enqueuer, publisher, clock)))

	// Work order queries
	register("get work order query", common.RegisterHandler[*woqueries.GetWorkOrderQuery](med,
		woqueries.NewGetWorkOrderQueryHandler(workOrders)))
	register("work order notes query", common.RegisterHandler[*woqueries.WorkOrderNotesQuery](med,
		woqueries.NewWorkOrderNotesQueryHandler(workOrders)))
	register("work order cost query", common.RegisterHandler[*woqueries.WorkOrderCostQuery](med,
		woqueries.NewWorkOrderCostQueryHandler(workOrders, costing, cfg.Costing.MaxConcurrentFetches)))

	// ASN commands
	register("create asn", common.RegisterHandler[*asncommands.CreateASNCommand](med,
		asncommands.NewCreateASNHandler(txManager, asns, enqueuer, publisher, clock)))
	register("submit asn", common.RegisterHandler[*asncommands.SubmitASNCommand](med,
		asncommands.NewSubmitASNHandler(txManager, asns, enqueuer, publisher, clock)))
	register("hold asn", common.RegisterHandler[*asncommands.HoldASNCommand](med,
		asncommands.NewHoldASNHandler(txManager, asns, enqueuer, publisher, clock)))
	register("release asn", common.RegisterHandler[*asncommands.ReleaseASNCommand](med,
		asncommands.NewReleaseASNHandler(txManager, asns, enqueuer, publisher, clock)))
	register("mark asn in transit", common.RegisterHandler[*asncommands.MarkASNInTransitCommand](med,
		asncommands.NewMarkASNInTransitHandler(txManager, asns, enqueuer, publisher, clock)))
	register("mark asn delivered", common.RegisterHandler[*asncommands.MarkASNDeliveredCommand](med,
		asncommands.NewMarkASNDeliveredHandler(txManager, asns, enqueuer, publisher, clock)))
	register("cancel asn", common.RegisterHandler[*asncommands.CancelASNCommand](med,
		asncommands.NewCancelASNHandler(txManager, asns, enqueuer, publisher, clock)))
	register("add asn item", common.RegisterHandler[*asncommands.AddASNItemCommand](med,
		asncommands.NewAddASNItemHandler(txManager, asns, enqueuer, publisher, clock)))
	register("remove asn item", common.RegisterHandler[*asncommands.RemoveASNItemCommand](med,
		asncommands.NewRemoveASNItemHandler(txManager, asns, enqueuer, publisher, clock)))
	register("add asn package", common.RegisterHandler[*asncommands.AddASNPackageCommand](med,
		asncommands.NewAddASNPackageHandler(txManager, asns, enqueuer, publisher, clock)))
	register("add asn note", common.RegisterHandler[*asncommands.AddASNNoteCommand](med,
		asncommands.NewAddASNNoteHandler(txManager, asns, enqueuer, publisher, clock)))

	// ASN queries
	register("get asn query", common.RegisterHandler[*asnqueries.GetASNQuery](med,
		asnqueries.NewGetASNQueryHandler(asns)))
	register("asn notes query", common.RegisterHandler[*asnqueries.ASNNotesQuery](med,
		asnqueries.NewASNNotesQueryHandler(asns)))

	// Returns and warranty commands
	register("initiate return", common.RegisterHandler[*returnscommands.InitiateReturnCommand](med,
		returnscommands.NewInitiateReturnHandler(txManager, rets, orders, enqueuer, publisher, clock)))
	register("transition return", common.RegisterHandler[*returnscommands.TransitionReturnCommand](med,
		returnscommands.NewTransitionReturnHandler(txManager, rets, enqueuer, publisher, clock)))
	register("receive return", common.RegisterHandler[*returnscommands.ReceiveReturnCommand](med,
		returnscommands.NewReceiveReturnHandler(txManager, rets, enqueuer, publisher, clock)))
	register("refund return", common.RegisterHandler[*returnscommands.RefundReturnCommand](med,
		returnscommands.NewRefundReturnHandler(txManager, rets, enqueuer, publisher, clock)))
	register("restock return", common.RegisterHandler[*returnscommands.RestockReturnCommand](med,
		returnscommands.NewRestockReturnHandler(txManager, rets, balances, txnLog, enqueuer, publisher, clock)))
	register("create warranty", common.RegisterHandler[*returnscommands.CreateWarrantyCommand](med,
		returnscommands.NewCreateWarrantyHandler(txManager, warranties, enqueuer, publisher, clock)))
	register("void warranty", common.RegisterHandler[*returnscommands.VoidWarrantyCommand](med,
		returnscommands.NewVoidWarrantyHandler(txManager, warranties, enqueuer, publisher, clock)))
	register("submit warranty claim", common.RegisterHandler[*returnscommands.SubmitWarrantyClaimCommand](med,
		returnscommands.NewSubmitWarrantyClaimHandler(txManager, warranties, enqueuer, publisher, clock)))
	register("decide warranty claim", common.RegisterHandler[*returnscommands.DecideWarrantyClaimCommand](med,
		returnscommands.NewDecideWarrantyClaimHandler(txManager, warranties, enqueuer, publisher, clock)))

	// Returns and warranty queries
	register("get return query", common.RegisterHandler[*returnsqueries.GetReturnQuery](med,
		returnsqueries.NewGetReturnQueryHandler(rets)))
	register("get warranty query", common.RegisterHandler[*returnsqueries.GetWarrantyQuery](med,
		returnsqueries.NewGetWarrantyQueryHandler(warranties, clock)))

	if firstErr != nil {
		return nil, firstErr
	}
	return med, nil
}
