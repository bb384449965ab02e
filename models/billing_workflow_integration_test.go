package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/meridianlegal/practice_backend/config"
	"github.com/meridianlegal/practice_backend/models"
	"github.com/meridianlegal/practice_backend/utils"
	"github.com/meridianlegal/practice_backend/workflow"
	"github.com/shopspring/decimal"
)

func TestApprovalGateAndLedgerRoundTrip(t *testing.T) {
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
	t.Setenv("DB_NAME", "practice_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if err := models.MigrateDatabase(config.GetDB()); err != nil {
		t.Fatalf("MigrateDatabase: %v", err)
	}

	seedCtx := utils.SetSkipFirmScopeInContext(ctx, true)
	firm, err := models.CreateFirm(seedCtx, &models.NewFirm{
		Name: "Roundtrip & Partners",
		DefaultRates: models.RateCard{
			models.UserRolePartner:   decimal.NewFromInt(450),
			models.UserRoleAssociate: decimal.NewFromInt(300),
			models.UserRoleParalegal: decimal.NewFromInt(150),
		},
	})
	if err != nil {
		t.Fatalf("CreateFirm: %v", err)
	}

	partner, err := models.CreateUser(seedCtx, &models.NewUser{
		FirmId: firm.ID, Username: "partner@roundtrip.test", Name: "Partner", Password: "pw", Role: models.UserRolePartner,
	})
	if err != nil {
		t.Fatalf("CreateUser partner: %v", err)
	}
	associate, err := models.CreateUser(seedCtx, &models.NewUser{
		FirmId: firm.ID, Username: "associate@roundtrip.test", Name: "Associate", Password: "pw", Role: models.UserRoleAssociate,
	})
	if err != nil {
		t.Fatalf("CreateUser associate: %v", err)
	}

	asUser := func(u *models.User) context.Context {
		c := utils.SetFirmIdInContext(ctx, firm.ID)
		c = utils.SetUserIdInContext(c, u.ID)
		c = utils.SetUserNameInContext(c, u.Name)
		c = utils.SetUsernameInContext(c, u.Username)
		return utils.SetUserRoleInContext(c, string(u.Role))
	}
	associateCtx := asUser(associate)
	partnerCtx := asUser(partner)

	// an associate-opened case starts pending, with the approval row created
	// in the same transaction
	kase, err := models.CreateCase(associateCtx, &models.NewCase{
		CaseNumber:  "RT-001",
		Title:       "Hourly engagement",
		BillingType: models.BillingTypeHourly,
	})
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	if kase.Status != models.CaseStatusPendingApproval {
		t.Fatalf("expected PendingApproval, got %s", kase.Status)
	}
	approval, err := models.GetApprovalByCase(associateCtx, kase.ID)
	if err != nil {
		t.Fatalf("GetApprovalByCase: %v", err)
	}
	if approval.Status != models.ApprovalStatusPending {
		t.Fatalf("expected Pending approval, got %s", approval.Status)
	}

	// billable time is gated until the case is approved
	_, err = models.CreateTimeEntry(associateCtx, &models.NewTimeEntry{
		CaseId:   kase.ID,
		WorkDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Hours:    decimal.NewFromInt(3),
	})
	if !utils.IsCaseNotApprovedError(err) {
		t.Fatalf("expected CaseNotApprovedError before approval, got %v", err)
	}

	if _, err := workflow.ApproveCase(partnerCtx, kase.ID, "scope confirmed"); err != nil {
		t.Fatalf("ApproveCase: %v", err)
	}
	kase, err = models.GetCase(partnerCtx, kase.ID)
	if err != nil {
		t.Fatalf("GetCase after approval: %v", err)
	}
	if kase.Status != models.CaseStatusActive {
		t.Fatalf("expected Active after approval, got %s", kase.Status)
	}

	// the same entry now goes through, with the associate rate resolved and
	// persisted at creation time
	entry, err := models.CreateTimeEntry(associateCtx, &models.NewTimeEntry{
		CaseId:   kase.ID,
		WorkDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Hours:    decimal.NewFromInt(3),
	})
	if err != nil {
		t.Fatalf("CreateTimeEntry after approval: %v", err)
	}
	if !entry.Rate.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected persisted associate rate 300, got %s", entry.Rate)
	}
	if !entry.Amount().Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected amount 900, got %s", entry.Amount())
	}
}

func TestChangeBillingAmountWritesLedgerRowFirst(t *testing.T) {
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
	t.Setenv("DB_NAME", "practice_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if err := models.MigrateDatabase(config.GetDB()); err != nil {
		t.Fatalf("MigrateDatabase: %v", err)
	}

	seedCtx := utils.SetSkipFirmScopeInContext(ctx, true)
	firm, err := models.CreateFirm(seedCtx, &models.NewFirm{
		Name: "Ledger & Partners",
		DefaultRates: models.RateCard{
			models.UserRolePartner:   decimal.NewFromInt(450),
			models.UserRoleAssociate: decimal.NewFromInt(300),
			models.UserRoleParalegal: decimal.NewFromInt(150),
		},
	})
	if err != nil {
		t.Fatalf("CreateFirm: %v", err)
	}
	partner, err := models.CreateUser(seedCtx, &models.NewUser{
		FirmId: firm.ID, Username: "partner@ledger.test", Name: "Partner", Password: "pw", Role: models.UserRolePartner,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	partnerCtx := utils.SetFirmIdInContext(ctx, firm.ID)
	partnerCtx = utils.SetUserIdInContext(partnerCtx, partner.ID)
	partnerCtx = utils.SetUserNameInContext(partnerCtx, partner.Name)
	partnerCtx = utils.SetUserRoleInContext(partnerCtx, string(partner.Role))

	fixed := decimal.NewFromInt(22000)
	kase, err := models.CreateCase(partnerCtx, &models.NewCase{
		CaseNumber:  "LG-001",
		Title:       "Fixed fee matter",
		BillingType: models.BillingTypeFixed,
		FixedAmount: &fixed,
	})
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	if kase.Status != models.CaseStatusActive {
		t.Fatalf("partner-opened case must be Active, got %s", kase.Status)
	}

	newAmount := decimal.NewFromInt(25000)
	updated, err := workflow.ChangeBillingAmount(partnerCtx, kase.ID, newAmount, "scope extension")
	if err != nil {
		t.Fatalf("ChangeBillingAmount: %v", err)
	}
	if updated.FixedAmount == nil || !updated.FixedAmount.Equal(newAmount) {
		t.Fatalf("expected fixed amount 25000, got %v", updated.FixedAmount)
	}

	rows, err := models.GetBillingHistoryByCase(partnerCtx, kase.ID, nil, 0, 0)
	if err != nil {
		t.Fatalf("GetBillingHistoryByCase: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one ledger row, got %d", len(rows))
	}
	row := rows[0]
	if row.EventType != models.BillingEventFixedAmountChanged {
		t.Fatalf("expected FixedAmountChanged, got %s", row.EventType)
	}
	if row.PreviousAmount == nil || !row.PreviousAmount.Equal(fixed) {
		t.Fatalf("ledger previous amount must snapshot the pre-change value, got %v", row.PreviousAmount)
	}
	if row.NewAmount == nil || !row.NewAmount.Equal(newAmount) {
		t.Fatalf("ledger new amount mismatch, got %v", row.NewAmount)
	}
	if row.CreatedBy != partner.ID {
		t.Fatalf("ledger must record the acting user, got %d", row.CreatedBy)
	}

	feed := models.BuildBillingFeed(rows)
	if feed[0].ChainBroken {
		t.Fatal("a single well-formed change must not be flagged")
	}

	// a second change must chain onto the first
	firstChangeAt := row.CreatedAt
	time.Sleep(1100 * time.Millisecond)
	final := decimal.NewFromInt(27500)
	if _, err := workflow.ChangeBillingAmount(partnerCtx, kase.ID, final, "second extension"); err != nil {
		t.Fatalf("second ChangeBillingAmount: %v", err)
	}
	rows, err = models.GetBillingHistoryByCase(partnerCtx, kase.ID, nil, 0, 0)
	if err != nil {
		t.Fatalf("GetBillingHistoryByCase: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two ledger rows, got %d", len(rows))
	}
	for _, item := range models.BuildBillingFeed(rows) {
		if item.ChainBroken {
			t.Fatalf("row %d flagged despite intact chain", item.ID)
		}
	}

	// the since filter cuts the feed off below the given instant
	since := firstChangeAt.Add(time.Second)
	recent, err := models.GetBillingHistoryByCase(partnerCtx, kase.ID, &since, 0, 0)
	if err != nil {
		t.Fatalf("GetBillingHistoryByCase since: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected only the second change past the since cutoff, got %d rows", len(recent))
	}
	if recent[0].NewAmount == nil || !recent[0].NewAmount.Equal(final) {
		t.Fatalf("since filter returned the wrong row: %v", recent[0].NewAmount)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("practice-test-redis-%d", time.Now().UnixNano())
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
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("practice-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=practice_test",
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
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
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
