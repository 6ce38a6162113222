package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/otscheduler/portal/backend"
	"github.com/otscheduler/portal/localstore"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
	"github.com/urfave/cli/v2"
)

type session struct {
	ctx    context.Context
	client *backend.Client
	store  *localstore.Store
	out    io.Writer
}

// withSession opens the local store and a backend client for one command.
func withSession(fn func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		store, err := localstore.Open(c.String("store"))
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(c, &session{
			ctx:    c.Context,
			client: backend.NewClient(c.String("backend"), c.Duration("timeout")),
			store:  store,
			out:    c.App.Writer,
		})
	}
}

// user returns the stored session record, restricted to roles when given.
func (s *session) user(roles ...model.Role) (model.User, error) {
	u, err := s.store.LoadUser()
	if err != nil {
		return model.User{}, err
	}
	if len(roles) == 0 {
		return u, nil
	}
	for _, r := range roles {
		if u.Role == r {
			return u, nil
		}
	}
	labels := make([]string, len(roles))
	for i, r := range roles {
		labels[i] = r.Label()
	}
	return model.User{}, fmt.Errorf("this command is only for %s accounts", strings.Join(labels, " and "))
}

func backendErr(err error, fallback string) error {
	return errors.New(backend.UserMessage(err, fallback))
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "mobile", Required: true},
			&cli.StringFlag{Name: "gender", Required: true},
			&cli.StringFlag{Name: "role", Value: string(model.RolePatient)},
			&cli.StringFlag{Name: "department"},
			&cli.StringFlag{Name: "experience"},
			&cli.StringFlag{Name: "designation"},
			&cli.StringFlag{Name: "shift"},
			&cli.StringFlag{Name: "age"},
			&cli.StringFlag{Name: "condition", Usage: "condition name; sets the department"},
			&cli.StringFlag{Name: "case-description"},
			&cli.StringFlag{Name: "blood-group"},
			&cli.StringFlag{Name: "allergies"},
			&cli.StringFlag{Name: "emergency-name"},
			&cli.StringFlag{Name: "emergency-number"},
			&cli.PathFlag{Name: "image", Usage: "profile image file (under 2MB)"},
			&cli.BoolFlag{Name: "json", Usage: "use the JSON registration endpoint (no image)"},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			role, err := model.ParseRole(c.String("role"))
			if err != nil {
				return err
			}
			form := model.NewRegistrationForm()
			form.SelectRole(role)
			form.Username = util.NormalizeName(c.String("username"))
			form.Email = strings.TrimSpace(c.String("email"))
			form.Password = c.String("password")
			form.Mobile = c.String("mobile")
			form.Gender = c.String("gender")
			form.Department = c.String("department")
			form.Experience = c.String("experience")
			form.Designation = c.String("designation")
			form.ShiftTime = c.String("shift")
			form.Age = c.String("age")
			form.CaseDescription = c.String("case-description")
			form.BloodGroup = c.String("blood-group")
			form.Allergies = c.String("allergies")
			form.EmergencyContactName = c.String("emergency-name")
			form.EmergencyContactNumber = c.String("emergency-number")
			if cond := c.String("condition"); cond != "" {
				form.SelectCondition(cond)
			}
			if p := c.Path("image"); p != "" {
				data, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				if err := form.AttachProfileImage(filepath.Base(p), data); err != nil {
					return errors.New(model.MsgImageTooLarge)
				}
			}
			if err := form.Validate(); err != nil {
				return err
			}

			if c.Bool("json") {
				err = s.client.RegisterJSON(s.ctx, form)
			} else {
				err = s.client.Register(s.ctx, form)
			}
			if err != nil {
				return backendErr(err, model.MsgRegisterFailed)
			}
			fmt.Fprintln(s.out, form.SuccessMessage())
			fmt.Fprintln(s.out, "Log in with: otctl login --email", form.Email)
			return nil
		}),
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in and remember the account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			account, err := s.client.Login(s.ctx, c.String("email"), c.String("password"))
			if err != nil {
				return backendErr(err, model.MsgLoginFailed)
			}
			user, err := account.SessionUser()
			if err != nil {
				return errors.New(model.MsgInvalidUserData)
			}
			if err := s.store.SaveUser(user); err != nil {
				return err
			}
			fmt.Fprintln(s.out, model.MsgLoginSuccess)
			fmt.Fprintf(s.out, "%s (%s), home: %s\n", user.Username, user.Role.Label(), user.Role.LandingPath())
			return nil
		}),
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the stored account",
		Action: withSession(func(c *cli.Context, s *session) error {
			if err := s.store.ClearUser(); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "%s\nhome: %s\n", model.MsgLogoutSuccess, model.HomePath)
			return nil
		}),
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the stored account",
		Action: withSession(func(c *cli.Context, s *session) error {
			u, err := s.user()
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "%s <%s>\nrole: %s\nid: %s\n", u.Username, u.Email, u.Role.Label(), u.ID)
			return nil
		}),
	}
}

func forgotPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "forgot-password",
		Usage: "mail a password reset link",
		Flags: []cli.Flag{&cli.StringFlag{Name: "email", Required: true}},
		Action: withSession(func(c *cli.Context, s *session) error {
			msg, err := s.client.ForgotPassword(s.ctx, c.String("email"))
			if err != nil {
				return backendErr(err, model.MsgResetLinkFailed)
			}
			if msg == "" {
				msg = model.MsgResetLinkSent
			}
			fmt.Fprintln(s.out, msg)
			return nil
		}),
	}
}

func doctorsCommand() *cli.Command {
	return &cli.Command{
		Name:  "doctors",
		Usage: "list doctors",
		Flags: []cli.Flag{&cli.StringFlag{Name: "department"}},
		Action: withSession(func(c *cli.Context, s *session) error {
			doctors, err := s.client.ListDoctors(s.ctx)
			if err != nil {
				return backendErr(err, model.MsgDoctorsFailed)
			}
			dept := c.String("department")
			tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tEMAIL\tDEPARTMENT\tDESIGNATION")
			for _, d := range doctors {
				if dept != "" && !strings.EqualFold(d.DirectoryName(), dept) && !strings.EqualFold(d.Department, dept) {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Username, d.Email, d.DirectoryName(), d.Designation)
			}
			return tw.Flush()
		}),
	}
}

func doctorCommand() *cli.Command {
	return &cli.Command{
		Name:      "doctor",
		Usage:     "show one doctor",
		ArgsUsage: "EMAIL",
		Action: withSession(func(c *cli.Context, s *session) error {
			email := c.Args().First()
			if email == "" {
				return errors.New("doctor email is required")
			}
			d, err := s.client.GetUser(s.ctx, email)
			if err != nil {
				return backendErr(err, model.MsgDoctorNotFound)
			}
			if d.Role != model.RoleDoctor {
				return errors.New(model.MsgDoctorNotFound)
			}
			fmt.Fprintf(s.out, "%s <%s>\ndepartment: %s\ndesignation: %s\nexperience: %s years\n",
				d.Username, d.Email, d.DirectoryName(), d.Designation, d.Experience)
			return nil
		}),
	}
}

func departmentsCommand() *cli.Command {
	return &cli.Command{
		Name:      "departments",
		Usage:     "list departments and the conditions they treat",
		ArgsUsage: "[DEPARTMENT]",
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				name := strings.Join(c.Args().Slice(), " ")
				designations := model.DesignationsFor(name)
				if designations == nil {
					return fmt.Errorf("unknown department %q, choose one of: %s",
						name, strings.Join(model.DepartmentNames(), ", "))
				}
				fmt.Fprintf(c.App.Writer, "%s designations: %s\n", name, strings.Join(designations, ", "))
				return nil
			}
			for _, d := range model.Departments() {
				fmt.Fprintf(c.App.Writer, "%s\n  conditions: %s\n  designations: %s\n",
					d.Name, strings.Join(d.Conditions, ", "), strings.Join(d.Designations, ", "))
			}
			return nil
		},
	}
}

func conditionCommand() *cli.Command {
	return &cli.Command{
		Name:      "condition",
		Usage:     "find the department treating a condition",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			name := strings.Join(c.Args().Slice(), " ")
			dept := model.DepartmentForCondition(name)
			if dept == "" {
				return fmt.Errorf("no department treats %q", name)
			}
			fmt.Fprintf(c.App.Writer, "%s: %s\n", name, dept)
			return nil
		},
	}
}

func slotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "slots",
		Usage: "list bookable slots",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "quick", Usage: "show the hourly quick booking slots"}},
		Action: func(c *cli.Context) error {
			slots := model.ClinicSlots
			if c.Bool("quick") {
				slots = model.QuickSlots
			}
			for _, s := range slots {
				fmt.Fprintln(c.App.Writer, s)
			}
			return nil
		},
	}
}

func bookCommand() *cli.Command {
	return &cli.Command{
		Name:  "book",
		Usage: "book a consultation with a doctor",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "doctor", Required: true, Usage: "doctor email"},
			&cli.StringFlag{Name: "date", Required: true, Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "slot", Required: true},
			&cli.StringFlag{Name: "subject"},
			&cli.StringFlag{Name: "message"},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			user, err := s.user(model.RolePatient)
			if err != nil {
				return err
			}
			form := model.BookingForm{
				DoctorEmail: c.String("doctor"),
				Date:        c.String("date"),
				Slot:        c.String("slot"),
				Subject:     c.String("subject"),
				Message:     c.String("message"),
			}
			if err := form.Validate(); err != nil {
				return err
			}
			appt, err := s.client.BookDoctorAppointment(s.ctx, form.Request(user))
			if err != nil {
				return backendErr(err, model.MsgBookingFailed)
			}
			fmt.Fprintln(s.out, model.MsgBookingSuccess)
			if appt.ID != "" {
				fmt.Fprintf(s.out, "booking %s: %s %s with %s\n", appt.ID, form.Date, form.Slot, form.DoctorEmail)
			}
			return nil
		}),
	}
}

func printOT(w io.Writer, list []model.OTAppointment) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSLOT\tOT\tDOCTOR\tPATIENT\tSTATUS")
	for _, a := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s (%s)\n",
			a.ID, a.Date, a.Slot, a.OTNumber, a.Doctor, a.PatientName, a.Status, model.StatusTone(a.Status))
	}
	return tw.Flush()
}

func printClinic(w io.Writer, list []model.ClinicAppointment) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "no clinic appointments")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSLOT\tDOCTOR\tPATIENT\tSTATUS")
	for _, a := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Date, a.Slot, a.DoctorEmail, a.PatientName, a.Status)
	}
	return tw.Flush()
}

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "show the dashboard for the stored account",
		Action: withSession(func(c *cli.Context, s *session) error {
			user, err := s.user()
			if err != nil {
				return err
			}
			switch {
			case user.Role.IsSurgeon():
				ot, err := s.client.DoctorOT(s.ctx, user.Email)
				if err != nil {
					return backendErr(err, model.MsgDoctorDataFailed)
				}
				clinic, err := s.client.DoctorAppointments(s.ctx, user.Email)
				if err != nil {
					fmt.Fprintf(c.App.ErrWriter, "clinic appointments unavailable: %v\n", err)
					clinic = nil
				}
				fmt.Fprintln(s.out, "OT appointments:")
				if err := printOT(s.out, ot); err != nil {
					return err
				}
				if len(ot) > 0 {
					fmt.Fprintln(s.out, "active appointment:", ot[0].ID)
				}
				fmt.Fprintln(s.out, "\nClinic appointments:")
				return printClinic(s.out, clinic)
			case user.Role == model.RolePatient:
				bundle, err := s.client.PatientOT(s.ctx, user.Email)
				if err != nil {
					return backendErr(err, model.MsgOTDataFailed)
				}
				clinic, err := s.client.PatientAppointments(s.ctx, user.Email)
				if err != nil {
					fmt.Fprintf(c.App.ErrWriter, "clinic appointments unavailable: %v\n", err)
					clinic = nil
				}
				fmt.Fprintln(s.out, "OT appointments:")
				if err := printOT(s.out, bundle.Appointments); err != nil {
					return err
				}
				fmt.Fprintln(s.out, "\nReports:")
				for _, r := range bundle.Reports {
					fmt.Fprintf(s.out, "  %s  %s\n", r.FileName, r.FileURL)
				}
				fmt.Fprintln(s.out, "\nClinic appointments:")
				return printClinic(s.out, clinic)
			default:
				raw, err := s.client.Profile(s.ctx, user.Role, user.Email)
				if err != nil {
					return backendErr(err, model.MsgProfileFailed)
				}
				_, err = fmt.Fprintln(s.out, string(raw))
				return err
			}
		}),
	}
}

// patientFor returns the given patient email or the active appointment's patient.
func (s *session) patientFor(doctorEmail, given string) (string, error) {
	if given != "" {
		return given, nil
	}
	ot, err := s.client.DoctorOT(s.ctx, doctorEmail)
	if err != nil {
		return "", backendErr(err, model.MsgDoctorDataFailed)
	}
	if len(ot) == 0 || ot[0].PatientEmail == "" {
		return "", errors.New("no OT appointment to act on; pass --patient")
	}
	return ot[0].PatientEmail, nil
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "change the status of an OT appointment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "patient", Usage: "patient email (default: active appointment)"},
			&cli.StringFlag{Name: "status", Required: true, Usage: strings.Join(model.StatusOptions, ", ")},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			user, err := s.user(model.RoleDoctor, model.RoleAssistantDoctor)
			if err != nil {
				return err
			}
			status := c.String("status")
			if !util.Contains(status, model.StatusOptions) {
				return fmt.Errorf("status must be one of %s", strings.Join(model.StatusOptions, ", "))
			}
			patient, err := s.patientFor(user.Email, c.String("patient"))
			if err != nil {
				return err
			}
			if err := s.client.UpdateAppointmentStatus(s.ctx, user.Email, patient, status); err != nil {
				return backendErr(err, model.MsgStatusUpdateFailed)
			}
			ot, err := s.client.DoctorOT(s.ctx, user.Email)
			if err != nil {
				return backendErr(err, model.MsgDoctorDataFailed)
			}
			fmt.Fprintf(s.out, "Status updated to %s\n", status)
			return printOT(s.out, ot)
		}),
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "edit an OT appointment",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "case-type"},
			&cli.StringFlag{Name: "ot-number"},
			&cli.StringFlag{Name: "date"},
			&cli.StringFlag{Name: "slot"},
			&cli.StringFlag{Name: "assistant"},
			&cli.StringFlag{Name: "assistant-email"},
			&cli.StringFlag{Name: "nurses", Usage: "comma separated"},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			user, err := s.user(model.RoleDoctor, model.RoleAssistantDoctor)
			if err != nil {
				return err
			}
			id := c.Args().First()
			if id == "" {
				return errors.New("appointment id is required")
			}
			ot, err := s.client.DoctorOT(s.ctx, user.Email)
			if err != nil {
				return backendErr(err, model.MsgDoctorDataFailed)
			}
			current, ok := model.FindOT(ot, id)
			if !ok {
				return fmt.Errorf("no OT appointment %s", id)
			}

			form := model.EditFormFrom(current)
			overrides := []struct {
				flag string
				dst  *string
			}{
				{"case-type", &form.CaseType},
				{"ot-number", &form.OTNumber},
				{"date", &form.Date},
				{"slot", &form.Slot},
				{"assistant", &form.AssistantDoctor},
				{"assistant-email", &form.AssistantDoctorEmail},
				{"nurses", &form.Nurses},
			}
			for _, o := range overrides {
				if c.IsSet(o.flag) {
					*o.dst = c.String(o.flag)
				}
			}

			if err := s.client.EditAppointment(s.ctx, id, form.Edit()); err != nil {
				return backendErr(err, model.MsgEditFailed)
			}
			fmt.Fprintln(s.out, "Appointment updated")
			return nil
		}),
	}
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "upload a report for a patient",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "file", Required: true},
			&cli.StringFlag{Name: "patient", Usage: "patient email (default: active appointment)"},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			user, err := s.user(model.RoleDoctor, model.RoleAssistantDoctor)
			if err != nil {
				return err
			}
			patient, err := s.patientFor(user.Email, c.String("patient"))
			if err != nil {
				return err
			}
			f, err := os.Open(c.Path("file"))
			if err != nil {
				return err
			}
			defer f.Close()
			if err := s.client.UploadReport(s.ctx, user.Email, patient, filepath.Base(f.Name()), f); err != nil {
				return backendErr(err, model.MsgUploadFailed)
			}
			fmt.Fprintf(s.out, "Report uploaded for %s\n", patient)
			return nil
		}),
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "download a report file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Required: true, Usage: "report fileUrl"},
			&cli.PathFlag{Name: "out", Usage: "destination (default: file name from the URL)"},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			if _, err := s.user(); err != nil {
				return err
			}
			dst := c.Path("out")
			if dst == "" {
				u, err := url.Parse(c.String("url"))
				if err != nil {
					return err
				}
				dst = path.Base(u.Path)
				if dst == "." || dst == "/" {
					dst = "report"
				}
			}
			f, err := os.Create(dst)
			if err != nil {
				return err
			}
			n, err := s.client.DownloadReport(s.ctx, c.String("url"), f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(dst)
				return backendErr(err, "Download failed")
			}
			fmt.Fprintf(s.out, "saved %s (%d bytes)\n", dst, n)
			return nil
		}),
	}
}
