package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jrsteele09/go-ordercloud/apierror"
	"github.com/jrsteele09/go-ordercloud/client"
	"github.com/jrsteele09/go-ordercloud/internal/utils"
	"github.com/jrsteele09/go-ordercloud/models"
	"github.com/jrsteele09/go-ordercloud/oauth2"
	"github.com/jrsteele09/go-ordercloud/token"
)

const listPageSize = 20

var (
	okColour    = color.New(color.FgGreen)
	errColour   = color.New(color.FgRed)
	labelColour = color.New(color.FgCyan, color.Bold)
)

var defaultRoles = []oauth2.ApiRole{oauth2.Shopper, oauth2.MeAdmin}

// App is the interactive shell. It holds no tokens itself; everything lives
// in the client's TokenSet.
type App struct {
	client    *client.Client
	clientID  string
	validator *token.Validator
	reader    *bufio.Reader
	out       io.Writer
	username  string
}

func NewApp(c *client.Client, clientID string, in io.Reader, out io.Writer) *App {
	return &App{
		client:    c,
		clientID:  clientID,
		validator: token.NewValidator(),
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

func (a *App) status() string {
	if a.username == "" {
		return ""
	}
	return "(" + a.username + ") "
}

// Run reads commands until exit, EOF or ctx is done.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "OrderCloud CLI (type 'help' for commands)")
	for ctx.Err() == nil {
		fmt.Fprintf(a.out, "occli %s> ", a.status())
		line, err := a.reader.ReadString('\n')
		if parts := strings.Fields(line); len(parts) > 0 {
			if a.dispatch(ctx, parts[0], parts[1:]) {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out)
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// dispatch runs one command and reports whether the shell should exit.
func (a *App) dispatch(ctx context.Context, cmd string, args []string) bool {
	var err error
	switch cmd {
	case "help":
		a.help()
	case "login":
		err = a.login(ctx, args)
	case "anon":
		err = a.anonymous(ctx)
	case "integration":
		err = a.clientCredentials(ctx, args)
	case "products", "ls":
		err = a.listProducts(ctx, args)
	case "product", "show":
		err = a.showProduct(ctx, args)
	case "whoami":
		err = a.whoami(ctx)
	case "token":
		err = a.showToken(ctx)
	case "verify":
		err = a.verify(ctx)
	case "logout":
		err = a.logout(ctx)
	case "exit", "quit":
		fmt.Fprintln(a.out, "Bye!")
		return true
	default:
		fmt.Fprintf(a.out, "Unknown command %q, type 'help'\n", cmd)
	}
	if err != nil {
		a.printError(err)
	}
	return false
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Available commands:")
	fmt.Fprintln(a.out, "  login [username] [roles...]   password grant")
	fmt.Fprintln(a.out, "  anon                          anonymous shopper token")
	fmt.Fprintln(a.out, "  integration <secret> [roles]  client credentials grant")
	fmt.Fprintln(a.out, "  products [search]             list products")
	fmt.Fprintln(a.out, "  product <id>                  show one product")
	fmt.Fprintln(a.out, "  whoami | token | verify       inspect the current token")
	fmt.Fprintln(a.out, "  logout | exit")
}

func (a *App) printError(err error) {
	if apiErr, ok := apierror.As(err); ok {
		errColour.Fprintf(a.out, "API error %d %s: %s\n", apiErr.Status, apiErr.ErrorCode, apiErr.Message)
		return
	}
	errColour.Fprintf(a.out, "error: %v\n", err)
}

func parseRoles(args []string) []oauth2.ApiRole {
	if len(args) == 0 {
		return defaultRoles
	}
	roles := make([]oauth2.ApiRole, 0, len(args))
	for _, arg := range args {
		roles = append(roles, oauth2.ApiRole(arg))
	}
	return roles
}

func (a *App) login(ctx context.Context, args []string) error {
	var username string
	if len(args) > 0 {
		username, args = args[0], args[1:]
	} else {
		var err error
		if username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	tok, err := a.client.Auth().Login(ctx, username, string(password), a.clientID, parseRoles(args), nil)
	if err != nil {
		return err
	}
	return a.storeTokens(ctx, username, tok)
}

func (a *App) anonymous(ctx context.Context) error {
	tok, err := a.client.Auth().Anonymous(ctx, a.clientID, defaultRoles, nil)
	if err != nil {
		return err
	}
	return a.storeTokens(ctx, "anonymous", tok)
}

func (a *App) clientCredentials(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: integration <secret> [roles...]")
	}
	tok, err := a.client.Auth().ClientCredentials(ctx, args[0], a.clientID, parseRoles(args[1:]), nil)
	if err != nil {
		return err
	}
	return a.storeTokens(ctx, "integration", tok)
}

func (a *App) storeTokens(ctx context.Context, username string, tok *oauth2.AccessToken) error {
	if err := a.client.SetTokens(ctx, tok); err != nil {
		return err
	}
	a.username = username
	expiry := "no expiry"
	if claims, err := a.validator.Decode(tok.AccessToken); err == nil && claims.HasExpiry {
		expiry = "expires " + humanize.Time(claims.ExpiresAt())
	}
	okColour.Fprintf(a.out, "Logged in as %s, %s\n", username, expiry)
	return nil
}

func (a *App) listProducts(ctx context.Context, args []string) error {
	page, err := a.client.Products.List(ctx, models.ListOptions{
		Search:   strings.Join(args, " "),
		PageSize: utils.Ptr(listPageSize),
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tACTIVE\tAVAILABLE")
	for _, p := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", p.ID, p.Name, p.IsActive(), humanize.Comma(int64(p.Available())))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s of %s products\n", humanize.Comma(int64(len(page.Items))), humanize.Comma(int64(page.Meta.TotalCount)))
	return nil
}

func (a *App) showProduct(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: product <id>")
	}
	p, err := a.client.Products.Get(ctx, args[0])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(data))
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	info, err := a.client.UserInfo.GetToken(ctx)
	if err != nil {
		return err
	}
	labelColour.Fprint(a.out, "user: ")
	fmt.Fprintf(a.out, "%s (%s) client %s\n", info.Sub, info.UserType, info.ClientID)
	return nil
}

func (a *App) showToken(ctx context.Context) error {
	raw, err := a.client.Tokens().Get(ctx, token.AccessToken)
	if err != nil {
		return err
	}
	if raw == "" {
		fmt.Fprintln(a.out, "no access token, use login")
		return nil
	}
	claims, err := a.validator.Decode(raw)
	if err != nil {
		return err
	}
	refreshToken, err := a.client.Tokens().Get(ctx, token.RefreshToken)
	if err != nil {
		return err
	}

	labelColour.Fprint(a.out, "roles: ")
	fmt.Fprintln(a.out, strings.Join(claims.Roles, " "))
	labelColour.Fprint(a.out, "expires: ")
	if claims.HasExpiry {
		fmt.Fprintln(a.out, humanize.Time(claims.ExpiresAt()))
	} else {
		fmt.Fprintln(a.out, "never")
	}
	labelColour.Fprint(a.out, "refresh token: ")
	fmt.Fprintln(a.out, refreshToken != "")
	return nil
}

func (a *App) verify(ctx context.Context) error {
	raw, err := a.client.Tokens().Get(ctx, token.AccessToken)
	if err != nil {
		return err
	}
	if raw == "" {
		return errors.New("no access token, use login")
	}
	idToken, err := a.client.Verifier().Verify(ctx, raw)
	if err != nil {
		return err
	}
	okColour.Fprintf(a.out, "signature valid, issued by %s for %s\n", idToken.Issuer, idToken.Subject)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.client.Tokens().Clear(ctx); err != nil {
		return err
	}
	a.username = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
