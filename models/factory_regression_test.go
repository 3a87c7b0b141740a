package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/inventory"
	"github.com/mmdatafocus/factory_backend/models"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/mmdatafocus/factory_backend/workflow"
	"github.com/shopspring/decimal"
)

func TestPurchaseOpeningDirectSaleAgainstMySQL(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "factory_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	biz, err := models.CreateBusiness(ctx, &models.NewBusiness{
		Name:  "Test Factory",
		Email: "owner@test.local",
	})
	if err != nil {
		t.Fatalf("CreateBusiness: %v", err)
	}
	ctx = utils.SetBusinessIdInContext(ctx, biz.ID)
	ctx = utils.SetUsernameInContext(ctx, "test")

	supplier := mustPartner(t, ctx, "Acme Recycling", models.PartnerTypeSupplier)
	customer := mustPartner(t, ctx, "Granule Buyer", models.PartnerTypeCustomer)
	freight := mustPartner(t, ctx, "Harbour Freight", models.PartnerTypeProvider)
	pet, err := models.CreateOriginalType(ctx, &models.NewOriginalType{Name: "PET Bottles"})
	if err != nil {
		t.Fatalf("CreateOriginalType: %v", err)
	}

	dc := models.NewGormDataContext()
	ids := inventory.UUIDIssuer{}

	// 1000kg at 2.00 plus 50 freight lands at 2.05/kg
	next, err := models.NextBatchNumber(ctx)
	if err != nil {
		t.Fatalf("NextBatchNumber: %v", err)
	}
	cart := inventory.NewPurchaseCart(next)
	s := mustSnapshot(t, ctx)
	header := inventory.CartHeader{
		SupplierId:   supplier.ID,
		PurchaseDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CurrencyCode: models.BaseCurrencyCode,
		ExchangeRate: decimal.NewFromInt(1),
	}
	if err := cart.SetHeader(s, header, ""); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if _, err := cart.AddLine(ids, s, inventory.NewCartLine{OriginalTypeId: pet.ID, Weight: dec("1000"), GrossPrice: dec("2")}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if _, err := cart.AddAdditionalCost(ids, s, inventory.NewAdditionalCost{
		CostType:     models.CostTypeFreight,
		ProviderId:   freight.ID,
		CurrencyCode: models.BaseCurrencyCode,
		AmountFCY:    dec("50"),
	}); err != nil {
		t.Fatalf("AddAdditionalCost: %v", err)
	}
	if err := cart.Review(s); err != nil {
		t.Fatalf("Review: %v", err)
	}
	purchase, err := cart.Finalize(ctx, dc)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if purchase.ID == 0 || !purchase.LandedCostPerKg.Equal(dec("2.05")) {
		t.Fatalf("purchase id=%d perKg=%s", purchase.ID, purchase.LandedCostPerKg)
	}

	key := inventory.StockKey{SupplierId: supplier.ID, OriginalTypeId: pet.ID}
	pos := inventory.Aggregate(mustSnapshot(t, ctx), key)
	if !pos.Available.Weight.Equal(dec("1000")) || !pos.Available.Cost.Equal(dec("2050")) {
		t.Fatalf("after purchase: weight=%s cost=%s", pos.Available.Weight, pos.Available.Cost)
	}

	if _, err := inventory.PostOpening(ctx, mustSnapshot(t, ctx), dc, inventory.OpeningRequest{
		SupplierId:     supplier.ID,
		OriginalTypeId: pet.ID,
		BatchNumber:    &purchase.BatchNumber,
		OpeningDate:    time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Qty:            dec("600"),
	}); err != nil {
		t.Fatalf("PostOpening: %v", err)
	}
	pos = inventory.Aggregate(mustSnapshot(t, ctx), key)
	if !pos.Available.Weight.Equal(dec("400")) || !pos.Available.Cost.Equal(dec("820")) {
		t.Fatalf("after opening: weight=%s cost=%s", pos.Available.Weight, pos.Available.Cost)
	}

	invoice, err := inventory.RecordDirectSale(ctx, mustSnapshot(t, ctx), dc, ids, inventory.DirectSaleRequest{
		CustomerId:   customer.ID,
		PurchaseId:   purchase.ID,
		InvoiceDate:  time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		Qty:          dec("100"),
		Rate:         dec("3"),
		CurrencyCode: models.BaseCurrencyCode,
	})
	if err != nil {
		t.Fatalf("RecordDirectSale: %v", err)
	}
	if invoice.Status != models.SalesInvoiceStatusPosted || !strings.HasPrefix(invoice.InvoiceNumber, models.DirectSalePrefix) {
		t.Fatalf("direct sale invoice = %s %s", invoice.InvoiceNumber, invoice.Status)
	}
	s = mustSnapshot(t, ctx)
	balance := inventory.BatchBalance(s, *s.Purchase(purchase.ID))
	if !balance.Remaining.Equal(dec("300")) {
		t.Fatalf("batch remaining = %s, want 300", balance.Remaining)
	}

	// purchase, opening and direct sale each queued one ledger event
	pending := models.OutboxPublishStatusPending
	records, err := models.GetLedgerOutboxRecords(ctx, &pending, 50)
	if err != nil {
		t.Fatalf("GetLedgerOutboxRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("pending outbox rows = %d, want 3", len(records))
	}

	dispatcher := workflow.NewOutboxDispatcher(config.GetDB(), config.GetLogger())
	var published []config.LedgerMessage
	dispatcher.Publish = func(ctx context.Context, msg config.LedgerMessage) (string, error) {
		published = append(published, msg)
		return fmt.Sprintf("msg-%d", len(published)), nil
	}
	n, err := dispatcher.DispatchOnce(ctx)
	if err != nil {
		t.Fatalf("DispatchOnce: %v", err)
	}
	if n != 3 || len(published) != 3 {
		t.Fatalf("dispatched=%d published=%d, want 3", n, len(published))
	}
	sent := models.OutboxPublishStatusSent
	records, err = models.GetLedgerOutboxRecords(ctx, &sent, 50)
	if err != nil {
		t.Fatalf("GetLedgerOutboxRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("sent outbox rows = %d, want 3", len(records))
	}

	// a DS- number already taken is rejected inside the insert transaction
	clash := models.SalesInvoice{
		InvoiceNumber: invoice.InvoiceNumber,
		InvoiceDate:   invoice.InvoiceDate,
		CustomerId:    customer.ID,
		CurrencyCode:  models.BaseCurrencyCode,
		ExchangeRate:  dec("1"),
	}
	if err := dc.AddDirectSale(ctx, &clash, dec("2.05")); !errors.Is(err, models.ErrInvoiceNumberInUse) {
		t.Fatalf("duplicate direct sale number: err = %v", err)
	}

	// a cart started before the first purchase is reviewed onto the next batch
	stale := inventory.NewPurchaseCart(next)
	s = mustSnapshot(t, ctx)
	if err := stale.SetHeader(s, header, ""); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if _, err := stale.AddLine(ids, s, inventory.NewCartLine{OriginalTypeId: pet.ID, Weight: dec("200"), GrossPrice: dec("2")}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := stale.Review(s); err != nil {
		t.Fatalf("Review: %v", err)
	}
	second, err := stale.Finalize(ctx, dc)
	if err != nil {
		t.Fatalf("Finalize second purchase: %v", err)
	}
	if second.BatchNumber == purchase.BatchNumber {
		t.Fatalf("second purchase reused batch %s", second.BatchNumber)
	}

	// a purchase whose batch has openings cannot be deleted
	if _, err := inventory.PostOpening(ctx, mustSnapshot(t, ctx), dc, inventory.OpeningRequest{
		SupplierId:     supplier.ID,
		OriginalTypeId: pet.ID,
		BatchNumber:    &second.BatchNumber,
		OpeningDate:    time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		Qty:            dec("50"),
	}); err != nil {
		t.Fatalf("PostOpening second batch: %v", err)
	}
	if err := dc.DeleteEntity(ctx, "purchases", second.ID); !errors.Is(err, models.ErrEntityInUse) {
		t.Fatalf("delete purchase with openings: err = %v, want ErrEntityInUse", err)
	}
	if mustSnapshot(t, ctx).Purchase(second.ID) == nil {
		t.Fatalf("purchase with openings was deleted")
	}
}

func mustPartner(t *testing.T, ctx context.Context, name string, partnerType models.PartnerType) *models.Partner {
	t.Helper()
	p, err := models.CreatePartner(ctx, &models.NewPartner{Name: name, PartnerType: partnerType})
	if err != nil {
		t.Fatalf("CreatePartner %s: %v", name, err)
	}
	return p
}

func mustSnapshot(t *testing.T, ctx context.Context) *models.Snapshot {
	t.Helper()
	s, err := models.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	return s
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("factory-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := dockerRun("exec", name, "redis-cli", "ping"); err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("factory-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=factory_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent"); err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
