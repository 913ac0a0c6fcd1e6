package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"sort"
	"strings"

	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
	"github.com/jrsteele09/evangelism-tracker/internal/utils"
	"github.com/jrsteele09/evangelism-tracker/people"
	"github.com/jrsteele09/evangelism-tracker/reports"
	"github.com/jrsteele09/evangelism-tracker/users"
)

var errUsage = &errs.ValidationError{Message: "Unknown command, run `tracker help`"}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		if err := a.client.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Logged out")
		return nil
	case "whoami":
		return a.whoami(ctx)
	case "register":
		return a.register(ctx, rest)
	case "forgot-password":
		return a.forgotPassword(ctx, rest)
	case "reset-password":
		return a.resetPassword(ctx, rest)
	case "reports":
		return a.reports(ctx, rest)
	case "people":
		return a.people(ctx, rest)
	case "insights":
		return a.insights(ctx)
	}
	return errUsage
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

// requireSession fails fast when there is nothing to send.
func (a *app) requireSession() error {
	if !a.client.Session().IsAuthenticated() {
		return &errs.SessionExpiredError{Cause: errs.ErrNotAuthenticated}
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome back, %s\n", s.Profile.FirstName())
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	me, err := a.client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> (%s)\n", me.FullName, me.Email, me.Role)
	if exp := a.client.Session().Token.Expiry; !exp.IsZero() {
		fmt.Fprintf(a.out, "Access token expires %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlags("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone number")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	reg := users.Registration{FullName: *name, Email: *email, PhoneNumber: utils.OptionalString(*phone)}
	if _, err := a.client.Register(ctx, reg, *password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account created, you can now log in")
	return nil
}

func (a *app) forgotPassword(ctx context.Context, args []string) error {
	fs := newFlags("forgot-password")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	msg, err := a.client.RequestPasswordReset(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *app) resetPassword(ctx context.Context, args []string) error {
	fs := newFlags("reset-password")
	tok := fs.String("token", "", "token from the reset email")
	password := fs.String("password", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	if err := fs.Parse(args); err != nil {
		return err
	}
	msg, err := a.client.ResetPassword(ctx, *tok, *password, *confirm)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *app) reports(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errUsage
	}
	svc := reports.NewService(a.client)

	switch args[0] {
	case "list":
		list, err := svc.List(ctx)
		if err != nil {
			return err
		}
		for _, r := range list {
			fmt.Fprintf(a.out, "%s  %s  %-24s %-16s heard=%d accepted=%d\n", r.ID, r.Date, r.OutreachName, r.Location, r.HeardCount, r.AcceptedCount)
		}
		return nil
	case "get":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		r, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		return a.printJSON(r)
	case "create":
		u, err := reportFlags("reports create", args[1:])
		if err != nil {
			return err
		}
		r, err := svc.Create(ctx, reports.Payload{
			OutreachName:    utils.Value(u.OutreachName),
			Location:        utils.Value(u.Location),
			Date:            utils.Value(u.Date),
			HeardCount:      utils.Value(u.HeardCount),
			InterestedCount: utils.Value(u.InterestedCount),
			AcceptedCount:   utils.Value(u.AcceptedCount),
			RepentedCount:   utils.Value(u.RepentedCount),
			Notes:           u.Notes,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created report %s\n", r.ID)
		return nil
	case "update":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		u, err := reportFlags("reports update", args[2:])
		if err != nil {
			return err
		}
		r, err := svc.Update(ctx, id, u)
		if err != nil {
			return err
		}
		return a.printJSON(r)
	case "delete":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		if err := svc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted report %s\n", id)
		return nil
	}
	return errUsage
}

// reportFlags returns only the flags that were actually given.
func reportFlags(name string, args []string) (reports.Update, error) {
	fs := newFlags(name)
	outreach := fs.String("name", "", "outreach name")
	location := fs.String("location", "", "location")
	date := fs.String("date", "", "date, YYYY-MM-DD")
	heard := fs.Int("heard", 0, "people who heard")
	interested := fs.Int("interested", 0, "people interested")
	accepted := fs.Int("accepted", 0, "people who accepted")
	repented := fs.Int("repented", 0, "people who repented")
	notes := fs.String("notes", "", "notes")
	if err := fs.Parse(args); err != nil {
		return reports.Update{}, err
	}

	var u reports.Update
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			u.OutreachName = outreach
		case "location":
			u.Location = location
		case "date":
			u.Date = date
		case "heard":
			u.HeardCount = heard
		case "interested":
			u.InterestedCount = interested
		case "accepted":
			u.AcceptedCount = accepted
		case "repented":
			u.RepentedCount = repented
		case "notes":
			u.Notes = notes
		}
	})
	return u, nil
}

func (a *app) people(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errUsage
	}
	svc := people.NewService(a.client)

	switch args[0] {
	case "list":
		fs := newFlags("people list")
		reportID := fs.String("report", "", "only people met at this report")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		list, err := svc.List(ctx, *reportID)
		if err != nil {
			return err
		}
		for _, p := range list {
			fmt.Fprintf(a.out, "%s  %-24s %-10s %s\n", p.ID, p.FullName, p.Status, utils.Value(p.PhoneNumber))
		}
		return nil
	case "get":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		p, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		return a.printJSON(p)
	case "create":
		u, err := personFlags("people create", args[1:])
		if err != nil {
			return err
		}
		p, err := svc.Create(ctx, people.Payload{
			FullName:    utils.Value(u.FullName),
			PhoneNumber: u.PhoneNumber,
			Status:      utils.Value(u.Status),
			ReportID:    utils.Value(u.ReportID),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Added %s\n", p.FullName)
		return nil
	case "update":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		u, err := personFlags("people update", args[2:])
		if err != nil {
			return err
		}
		p, err := svc.Update(ctx, id, u)
		if err != nil {
			return err
		}
		return a.printJSON(p)
	case "delete":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		if err := svc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted person %s\n", id)
		return nil
	}
	return errUsage
}

func personFlags(name string, args []string) (people.Update, error) {
	fs := newFlags(name)
	fullName := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	status := fs.String("status", "", "interested, accepted or repented")
	reportID := fs.String("report", "", "report id")
	if err := fs.Parse(args); err != nil {
		return people.Update{}, err
	}

	var u people.Update
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			u.FullName = fullName
		case "phone":
			u.PhoneNumber = utils.OptionalString(*phone)
		case "status":
			u.Status = utils.Ptr(people.Status(strings.ToLower(*status)))
		case "report":
			u.ReportID = reportID
		}
	})
	return u, nil
}

func (a *app) insights(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	list, err := reports.NewService(a.client).List(ctx)
	if err != nil {
		return err
	}

	t := reports.Totals(list)
	fmt.Fprintf(a.out, "Reports %d  heard %d  interested %d  accepted %d  repented %d\n\n",
		len(list), t.Heard, t.Interested, t.Accepted, t.Repented)

	timeline := reports.Timeline(list)
	trend := reports.ConversionTrend(timeline)
	fmt.Fprintf(a.out, "%-9s %6s %10s %8s %8s %9s %11s\n", "Month", "Heard", "Interested", "Accepted", "Repented", "Interest", "Commitment")
	for i, m := range timeline {
		fmt.Fprintf(a.out, "%-9s %6d %10d %8d %8d %9.2f %11.2f\n",
			m.Label(), m.Heard, m.Interested, m.Accepted, m.Repented, trend[i].InterestRate, trend[i].CommitmentRate)
	}
	return nil
}

func (a *app) printMetrics() error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("[tracker printMetrics] %w", err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			fmt.Fprintf(a.out, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
		}
	}
	return nil
}

func (a *app) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("[tracker printJSON] %w", err)
	}
	fmt.Fprintln(a.out, string(b))
	return nil
}

func idArg(args []string) (string, error) {
	if len(args) < 2 || strings.HasPrefix(args[1], "-") {
		return "", &errs.ValidationError{Field: "id", Message: "An id is required"}
	}
	return args[1], nil
}
