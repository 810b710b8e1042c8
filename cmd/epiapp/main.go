package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/DaniloHMoura/EPIApp/internal/auth"
	"github.com/DaniloHMoura/EPIApp/internal/db"
	"github.com/DaniloHMoura/EPIApp/internal/imaging"
	"github.com/DaniloHMoura/EPIApp/internal/model"
	"github.com/DaniloHMoura/EPIApp/internal/ppe"
	"github.com/DaniloHMoura/EPIApp/internal/report"
	"github.com/DaniloHMoura/EPIApp/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func usage() {
	fmt.Fprint(os.Stdout, `Usage: epiapp [flags] <command> [command flags]

Flags:
  -d, -db <path>      SQLite database path (default: epiapp.sqlite3)
  -l, -log <path>     log file path (default: no file, stdout/stderr only)
  -h, -help           show this help and exit

Commands:
  login -u <username>                    start an operator session (password on stdin)
  logout                                 end the current session
  people                                 list people
  person-add -u <user> -n <name> -b <badge> [-cpf id] [-level 1|2|3] [-company id]
  person-del -p <person id>              remove a person
  items [-search text] [-category id]    list catalog items
  item-add -n <name> [-code c] [-size s] [-brand b] [-category id]
           [-qty n] [-price p] [-min n] [-supplier s]
  item-photo -i <item id> -f <file>      attach a photo to an item
  item-del -i <item id>                  remove an item
  categories                             list categories
  category-add -n <name> [-desc text]
  category-del -i <category id>
  companies                              list companies
  company-add -n <name> [-tax id] [-addr address]
  company-del -i <company id>
  issue -p <person> -i <name-or-code> [-s size] -q <qty> [-days 30]
  return -p <person> -i <item id> -q <qty>
  outstanding -p <person>                what a person still holds
  delivered [-p person]                  issued equipment listing
  report <low-stock|inventory|categories|most-used>
`)
}

func main() {
	fs := flag.NewFlagSet("epiapp", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "epiapp.sqlite3", "")
	fs.StringVar(&dbPath, "d", "epiapp.sqlite3", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = usage

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		database, password, err := initDatabase(dbPath, "admin")
		if err != nil {
			slog.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		database.Close()

		printInitResult(dbPath, "admin", password)
		fmt.Println()
	}

	database, err := db.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	secret, err := store.GetSessionSecret(ctx, database)
	if err != nil {
		slog.Error("failed to get session secret", "error", err)
		os.Exit(1)
	}

	app := &app{
		db:          database,
		secret:      secret,
		sessionPath: dbPath + ".session",
		engine:      ppe.New(database, ppe.NewDBRecorder(database)),
	}

	if err := app.run(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	db          *sql.DB
	secret      string
	sessionPath string
	engine      *ppe.Engine
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "people":
		return a.listPeople(ctx)
	case "person-add":
		return a.addPerson(ctx, args)
	case "person-del":
		return a.deletePerson(ctx, args)
	case "items":
		return a.listItems(ctx, args)
	case "item-add":
		return a.addItem(ctx, args)
	case "item-photo":
		return a.setItemPhoto(ctx, args)
	case "item-del":
		return a.deleteItem(ctx, args)
	case "categories":
		return a.listCategories(ctx)
	case "category-add":
		return a.addCategory(ctx, args)
	case "category-del":
		return a.deleteCategory(ctx, args)
	case "companies":
		return a.listCompanies(ctx)
	case "company-add":
		return a.addCompany(ctx, args)
	case "company-del":
		return a.deleteCompany(ctx, args)
	case "issue":
		return a.issue(ctx, args)
	case "return":
		return a.returnItems(ctx, args)
	case "outstanding":
		return a.outstanding(ctx, args)
	case "delivered":
		return a.delivered(ctx, args)
	case "report":
		return a.runReport(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// session loads and validates the stored session token.
func (a *app) session(ctx context.Context) (*auth.Claims, error) {
	token, err := os.ReadFile(a.sessionPath)
	if err != nil {
		return nil, fmt.Errorf("no active session, run 'epiapp login' first")
	}

	claims, err := auth.ValidateSession(ctx, a.db, a.secret, strings.TrimSpace(string(token)))
	if err != nil {
		return nil, fmt.Errorf("session invalid or expired, run 'epiapp login' again")
	}
	return claims, nil
}

func (a *app) actor(ctx context.Context) (ppe.Actor, error) {
	claims, err := a.session(ctx)
	if err != nil {
		return ppe.Actor{}, err
	}
	return ppe.Actor{ID: claims.PersonID, Level: claims.Level}, nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("username required (-u)")
	}

	password, err := promptSecret(fmt.Sprintf("Password for %s: ", *username))
	if err != nil {
		return err
	}

	person, token, err := auth.Login(ctx, a.db, a.secret, *username, password)
	if err != nil {
		return err
	}
	if person == nil {
		return fmt.Errorf("wrong username or password")
	}

	if err := os.WriteFile(a.sessionPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Printf("Logged in as %s (level %d).\n", person.FullName, person.Level)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	token, err := os.ReadFile(a.sessionPath)
	if err != nil {
		return nil // no session, nothing to do
	}

	if err := auth.Logout(ctx, a.db, a.secret, strings.TrimSpace(string(token))); err != nil {
		return err
	}
	os.Remove(a.sessionPath)
	fmt.Println("Logged out.")
	return nil
}

func (a *app) listPeople(ctx context.Context) error {
	if _, err := a.session(ctx); err != nil {
		return err
	}

	people, err := store.ListPeople(ctx, a.db, 0)
	if err != nil {
		return err
	}
	for _, p := range people {
		fmt.Printf("%d\t%s\t%s\tlevel %d\t%s\n", p.ID, p.FullName, p.Badge, p.Level, p.CompanyName)
	}
	return nil
}

func (a *app) addPerson(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}
	if !model.LevelAtLeast(actor.Level, model.LevelAdmin) {
		return fmt.Errorf("only admins can manage people")
	}

	fs := flag.NewFlagSet("person-add", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	name := fs.String("n", "", "full name")
	badge := fs.String("b", "", "badge number")
	nationalID := fs.String("cpf", "", "national id")
	level := fs.Int("level", model.LevelHolder, "level (1-3)")
	companyID := fs.Int64("company", 0, "company id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *name == "" || *badge == "" {
		return fmt.Errorf("username (-u), full name (-n) and badge (-b) are required")
	}

	password, err := promptSecret("Password for new person: ")
	if err != nil {
		return err
	}
	if err := model.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	p := &model.Person{
		Username:     *username,
		PasswordHash: hash,
		Level:        *level,
		FullName:     *name,
		Badge:        *badge,
		NationalID:   *nationalID,
	}
	if *companyID > 0 {
		p.CompanyID = companyID
	}

	created, err := store.CreatePerson(ctx, a.db, p)
	if err != nil {
		return err
	}
	fmt.Printf("Created person %d: %s\n", created.ID, created.FullName)
	return nil
}

func (a *app) deletePerson(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("person-del", flag.ContinueOnError)
	personID := fs.Int64("p", 0, "person id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *personID == 0 {
		return fmt.Errorf("person required (-p)")
	}

	if err := a.engine.DeletePerson(ctx, actor, *personID); err != nil {
		return err
	}
	fmt.Printf("Deleted person %d.\n", *personID)
	return nil
}

func (a *app) listItems(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("items", flag.ContinueOnError)
	search := fs.String("search", "", "name or code filter")
	categoryID := fs.Int64("category", 0, "category id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := store.ListItems(ctx, a.db, *search, *categoryID)
	if err != nil {
		return err
	}
	for _, item := range items {
		low := ""
		if item.LowStock() {
			low = "\tLOW"
		}
		fmt.Printf("%d\t%s\t%s\t%s\tqty %d\tmin %d\t%s%s\n",
			item.ID, item.Name, item.Code, item.Size, item.Quantity, item.MinStock,
			item.Price.StringFixed(2), low)
	}
	return nil
}

func (a *app) addItem(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}
	if !model.LevelAtLeast(actor.Level, model.LevelAdmin) {
		return fmt.Errorf("only admins can manage the catalog")
	}

	fs := flag.NewFlagSet("item-add", flag.ContinueOnError)
	name := fs.String("n", "", "item name")
	code := fs.String("code", "", "approval code")
	size := fs.String("size", "", "size")
	brand := fs.String("brand", "", "brand")
	categoryID := fs.Int64("category", 0, "category id")
	qty := fs.Int("qty", 0, "initial quantity")
	price := fs.String("price", "0", "unit price")
	minStock := fs.Int("min", 0, "minimum stock")
	supplier := fs.String("supplier", "", "supplier")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("item name required (-n)")
	}

	unitPrice, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", *price, err)
	}

	item := &model.Item{
		Name:     *name,
		Code:     *code,
		Size:     *size,
		Brand:    *brand,
		Quantity: *qty,
		Price:    unitPrice,
		MinStock: *minStock,
		Supplier: *supplier,
	}
	if *categoryID > 0 {
		item.CategoryID = categoryID
	}

	created, err := store.CreateItem(ctx, a.db, item)
	if err != nil {
		return err
	}
	fmt.Printf("Created item %d: %s\n", created.ID, created.Name)
	return nil
}

func (a *app) setItemPhoto(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}
	if !model.LevelAtLeast(actor.Level, model.LevelAdmin) {
		return fmt.Errorf("only admins can manage the catalog")
	}

	fs := flag.NewFlagSet("item-photo", flag.ContinueOnError)
	itemID := fs.Int64("i", 0, "item id")
	file := fs.String("f", "", "photo file (JPEG or PNG)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *itemID == 0 || *file == "" {
		return fmt.Errorf("item (-i) and photo file (-f) are required")
	}

	item, err := store.GetItem(ctx, a.db, *itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %d not found", *itemID)
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("opening photo: %w", err)
	}
	defer f.Close()

	photo, err := imaging.Process(f)
	if err != nil {
		return err
	}
	if err := store.SetItemPhoto(ctx, a.db, item.ID, photo.Data, photo.MIME); err != nil {
		return err
	}
	fmt.Printf("Photo set for item %d (%d bytes).\n", item.ID, len(photo.Data))
	return nil
}

func (a *app) deleteItem(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("item-del", flag.ContinueOnError)
	itemID := fs.Int64("i", 0, "item id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *itemID == 0 {
		return fmt.Errorf("item required (-i)")
	}

	if err := a.engine.DeleteItem(ctx, actor, *itemID); err != nil {
		return err
	}
	fmt.Printf("Deleted item %d.\n", *itemID)
	return nil
}

func (a *app) listCategories(ctx context.Context) error {
	categories, err := store.ListCategories(ctx, a.db)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Printf("%d\t%s\t%s\n", c.ID, c.Name, c.Description)
	}
	return nil
}

func (a *app) addCategory(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}
	if !model.LevelAtLeast(actor.Level, model.LevelAdmin) {
		return fmt.Errorf("only admins can manage categories")
	}

	fs := flag.NewFlagSet("category-add", flag.ContinueOnError)
	name := fs.String("n", "", "category name")
	desc := fs.String("desc", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("category name required (-n)")
	}

	c, err := store.CreateCategory(ctx, a.db, *name, *desc)
	if err != nil {
		return err
	}
	fmt.Printf("Created category %d: %s\n", c.ID, c.Name)
	return nil
}

func (a *app) deleteCategory(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("category-del", flag.ContinueOnError)
	categoryID := fs.Int64("i", 0, "category id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *categoryID == 0 {
		return fmt.Errorf("category required (-i)")
	}

	if err := a.engine.DeleteCategory(ctx, actor, *categoryID); err != nil {
		return err
	}
	fmt.Printf("Deleted category %d.\n", *categoryID)
	return nil
}

func (a *app) listCompanies(ctx context.Context) error {
	companies, err := store.ListCompanies(ctx, a.db)
	if err != nil {
		return err
	}
	for _, c := range companies {
		fmt.Printf("%d\t%s\t%s\t%s\n", c.ID, c.Name, c.TaxID, c.Address)
	}
	return nil
}

func (a *app) addCompany(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}
	if !model.LevelAtLeast(actor.Level, model.LevelAdmin) {
		return fmt.Errorf("only admins can manage companies")
	}

	fs := flag.NewFlagSet("company-add", flag.ContinueOnError)
	name := fs.String("n", "", "company name")
	taxID := fs.String("tax", "", "tax id")
	addr := fs.String("addr", "", "address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("company name required (-n)")
	}

	c, err := store.CreateCompany(ctx, a.db, *name, *taxID, *addr)
	if err != nil {
		return err
	}
	fmt.Printf("Created company %d: %s\n", c.ID, c.Name)
	return nil
}

func (a *app) deleteCompany(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("company-del", flag.ContinueOnError)
	companyID := fs.Int64("i", 0, "company id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *companyID == 0 {
		return fmt.Errorf("company required (-i)")
	}

	if err := a.engine.DeleteCompany(ctx, actor, *companyID); err != nil {
		return err
	}
	fmt.Printf("Deleted company %d.\n", *companyID)
	return nil
}

func (a *app) issue(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	personID := fs.Int64("p", 0, "person id")
	item := fs.String("i", "", "item name or code")
	size := fs.String("s", "", "size")
	qty := fs.Int("q", 0, "quantity")
	days := fs.Int("days", 30, "validity days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *personID == 0 || *item == "" || *qty == 0 {
		return fmt.Errorf("person (-p), item (-i) and quantity (-q) are required")
	}

	stage := ppe.NewStage(ppe.KindWithdrawal, *personID)
	if err := a.engine.StageWithdrawal(ctx, actor, stage, *item, *size, *qty, *days); err != nil {
		return err
	}

	credential, err := promptSecret("Collaborator password to confirm: ")
	if err != nil {
		return err
	}

	summary, err := a.engine.Confirm(ctx, actor, stage, credential)
	if err != nil {
		return err
	}
	fmt.Printf("Issued %d line(s) to person %d.\n", summary.Applied, summary.PersonID)
	return nil
}

func (a *app) returnItems(ctx context.Context, args []string) error {
	actor, err := a.actor(ctx)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("return", flag.ContinueOnError)
	personID := fs.Int64("p", 0, "person id")
	itemID := fs.Int64("i", 0, "item id")
	qty := fs.Int("q", 0, "quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *personID == 0 || *itemID == 0 || *qty == 0 {
		return fmt.Errorf("person (-p), item (-i) and quantity (-q) are required")
	}

	stage := ppe.NewStage(ppe.KindReturn, *personID)
	selections := []ppe.ReturnSelection{{ItemID: *itemID, Quantity: *qty}}
	if err := a.engine.StageReturns(ctx, actor, stage, selections); err != nil {
		return err
	}

	credential, err := promptSecret("Collaborator password to confirm: ")
	if err != nil {
		return err
	}

	summary, err := a.engine.Confirm(ctx, actor, stage, credential)
	if err != nil {
		return err
	}
	fmt.Printf("Returned %d line(s) from person %d.\n", summary.Applied, summary.PersonID)
	return nil
}

func (a *app) outstanding(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("outstanding", flag.ContinueOnError)
	personID := fs.Int64("p", 0, "person id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *personID == 0 {
		return fmt.Errorf("person required (-p)")
	}

	items, err := a.engine.OutstandingByPerson(ctx, *personID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("Nothing outstanding.")
		return nil
	}
	for _, it := range items {
		fmt.Printf("%d\t%s\t%s\t%s\tqty %d\n", it.ItemID, it.Name, it.Code, it.Size, it.Quantity)
	}
	return nil
}

func (a *app) delivered(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delivered", flag.ContinueOnError)
	personID := fs.Int64("p", 0, "person id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	movements, err := report.Delivered(ctx, a.db, report.DeliveredFilter{PersonID: *personID})
	if err != nil {
		return err
	}
	for _, m := range movements {
		expires := ""
		if m.ExpiresAt != nil {
			expires = m.ExpiresAt.Format("2006-01-02")
		}
		fmt.Printf("%s\t%s\t%s\tqty %d\t%s\texpires %s\n",
			m.MovedAt.Format("2006-01-02"), m.PersonName, m.ItemName, -m.Delta, m.ItemSize, expires)
	}
	return nil
}

func (a *app) runReport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("report kind required: low-stock, inventory, categories or most-used")
	}

	switch args[0] {
	case "low-stock":
		items, err := report.LowStockItems(ctx, a.db)
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Printf("%s\t%s\t%s\tqty %d\tmin %d\n",
				item.Name, item.Code, item.Size, item.Quantity, item.MinStock)
		}

	case "inventory":
		r, err := report.Inventory(ctx, a.db)
		if err != nil {
			return err
		}
		for _, item := range r.Items {
			fmt.Printf("%s\t%s\tqty %d\t%s\t%s\n",
				item.Name, item.Code, item.Quantity, item.Price.StringFixed(2), item.CategoryName)
		}
		fmt.Printf("Total: %d units, value %s\n", r.TotalUnits, r.TotalValue.StringFixed(2))

	case "categories":
		summaries, err := report.ByCategory(ctx, a.db)
		if err != nil {
			return err
		}
		for _, s := range summaries {
			fmt.Printf("%s\titems %d\tunits %d\tlow %d\n", s.Name, s.Items, s.Units, s.LowStock)
		}

	case "most-used":
		counts, err := report.MostIssued(ctx, a.db, 10)
		if err != nil {
			return err
		}
		for _, c := range counts {
			fmt.Printf("%s\tissued %d\n", c.Name, c.Issued)
		}

	default:
		return fmt.Errorf("unknown report %q", args[0])
	}
	return nil
}

// promptSecret reads a secret from stdin.
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// initDatabase creates a new database, runs migrations, and seeds the
// default categories and the admin account.
func initDatabase(path, adminUsername string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.Migrate(database); err != nil {
		return fail(fmt.Errorf("migrating schema: %w", err))
	}

	ctx := context.Background()
	if err := store.SeedCategories(ctx, database); err != nil {
		return fail(fmt.Errorf("seeding categories: %w", err))
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}

	_, err = store.CreatePerson(ctx, database, &model.Person{
		Username:     adminUsername,
		PasswordHash: hash,
		Level:        model.LevelAdmin,
		FullName:     "Administrator",
		Badge:        "ADMIN001",
	})
	if err != nil {
		return fail(fmt.Errorf("creating admin account: %w", err))
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized, default categories seeded.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password — it cannot be recovered.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
