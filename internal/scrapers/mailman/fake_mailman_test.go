package mailman

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
)

const fakeListPath = "/mailman/admin/test"

// fakeMailman serves the subset of mailman 2.1's admin interface the client
// uses, with the same table layout and a csrf token that rotates on every view
// of the members page.
type fakeMailman struct {
	password string
	// rosters with more members than this are split into letter pages
	chunkSize int

	mu       sync.Mutex
	members  []string
	token    string
	tokenSeq int
	session  string
	// every request, as "<METHOD> <path>?<query>"
	requests []string
	// the form of every POST, by path
	forms map[string]url.Values
}

func newFake(password string, members []string) *fakeMailman {
	return &fakeMailman{
		password:  password,
		chunkSize: 30,
		members:   slices.Clone(members),
		forms:     map[string]url.Values{},
	}
}

func newFakeMailman(t testing.TB, password string, members ...string) (*fakeMailman, *httptest.Server) {
	fake := newFake(password, members)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv
}

// newFakeMailmanTLS serves over https with a self-signed certificate.
func newFakeMailmanTLS(t testing.TB, password string, members ...string) (*fakeMailman, *httptest.Server) {
	fake := newFake(password, members)
	srv := httptest.NewTLSServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv
}

func (f *fakeMailman) baseUrl(srv *httptest.Server) string {
	return srv.URL + fakeListPath
}

func (f *fakeMailman) Members() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.members)
}

func (f *fakeMailman) SetChunkSize(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunkSize = n
}

func (f *fakeMailman) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

func (f *fakeMailman) Form(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[path]
}

func (f *fakeMailman) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	requestLine := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
	if r.URL.RawQuery != "" {
		requestLine += "?" + r.URL.RawQuery
	}
	f.requests = append(f.requests, requestLine)

	path, ok := strings.CutPrefix(r.URL.Path, fakeListPath)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if path == "" {
		path = "/"
	}

	if r.Method == http.MethodPost {
		err := r.ParseForm()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.forms[path] = r.PostForm
	}

	w.Header().Set("content-type", "text/html; charset=utf-8")

	if path == "/" && r.Method == http.MethodPost {
		f.login(w, r)
		return
	}
	if !f.authenticated(r) {
		f.writeLoginPage(w)
		return
	}

	switch {
	case path == "/members" && r.Method == http.MethodGet:
		f.roster(w, r.URL.Query().Get("letter"))
	case path == "/members/add" && r.Method == http.MethodPost:
		if !f.validToken(w, r) {
			return
		}
		f.add(w, r.PostForm.Get("subscribees"))
	case path == "/members/remove" && r.Method == http.MethodPost:
		if !f.validToken(w, r) {
			return
		}
		f.remove(w, r.PostForm.Get("unsubscribees"))
	case path == "/members/change" && r.Method == http.MethodPost:
		if !f.validToken(w, r) {
			return
		}
		f.change(w, r.PostForm.Get("change_from"), r.PostForm.Get("change_to"))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeMailman) login(w http.ResponseWriter, r *http.Request) {
	if r.PostForm.Get("adminpw") != f.password {
		f.writeLoginPage(w)
		return
	}
	f.session = fmt.Sprintf("session-%d", len(f.requests))
	http.SetCookie(w, &http.Cookie{
		Name:  "test+admin",
		Value: f.session,
		Path:  fakeListPath,
	})
	f.writePage(w, "<h2>Test Administration</h2>")
}

func (f *fakeMailman) authenticated(r *http.Request) bool {
	cookie, err := r.Cookie("test+admin")
	return err == nil && f.session != "" && cookie.Value == f.session
}

// mailman answers a stale token with the form again and an error message
// instead of an error status.
func (f *fakeMailman) validToken(w http.ResponseWriter, r *http.Request) bool {
	if f.token != "" && r.PostForm.Get("csrf_token") == f.token {
		return true
	}
	f.writePage(w, "<p>Das Formular ist abgelaufen oder ungültig.</p>")
	return false
}

func (f *fakeMailman) writeLoginPage(w http.ResponseWriter) {
	fmt.Fprint(w, `<html><head><title>Test Administrator Authentication</title></head><body>
<form method="post" action="`+fakeListPath+`/">
<table border="0" width="100%"><tr><td>Listen-Administrator Passwort:</td>
<td><input type="password" name="adminpw" size="30"></td></tr>
<tr><td colspan="2"><input type="submit" name="admlogin" value="Anmelden..."></td></tr>
</table></form></body></html>`)
}

func (f *fakeMailman) writePage(w http.ResponseWriter, content string) {
	fmt.Fprintf(w, `<html><head><title>Test Administration</title></head><body>
<table border="0" width="100%%"><tr><td><b>Test Administration</b></td></tr></table>
%s
</body></html>`, content)
}

func firstLetter(member string) string {
	if member == "" {
		return ""
	}
	return strings.ToLower(member[:1])
}

func (f *fakeMailman) letters() []string {
	var letters []string
	for _, m := range f.members {
		l := firstLetter(m)
		if !slices.Contains(letters, l) {
			letters = append(letters, l)
		}
	}
	slices.Sort(letters)
	return letters
}

func (f *fakeMailman) roster(w http.ResponseWriter, letter string) {
	f.tokenSeq++
	f.token = fmt.Sprintf("%d:%x", f.tokenSeq, f.tokenSeq*7919)

	paginated := len(f.members) > f.chunkSize
	if paginated && letter == "" {
		letter = f.letters()[0]
	}

	var rows strings.Builder
	fmt.Fprintf(
		&rows,
		`<tr><td COLSPAN="10" BGCOLOR="#dddddd"><center><b>Mitgliederliste (%d Mitglieder insgesamt)</b></center></td></tr>`+"\n",
		len(f.members),
	)

	if paginated {
		rows.WriteString(`<tr><td COLSPAN="10"><center>`)
		for _, l := range f.letters() {
			fmt.Fprintf(&rows, `<a href="%s/members?letter=%s">%s</a> `, fakeListPath, l, strings.ToUpper(l))
		}
		rows.WriteString("</center></td></tr>\n")
		fmt.Fprintf(&rows, `<tr><td COLSPAN="10"><center>Mitglieder, die mit "%s" anfangen</center></td></tr>`+"\n", letter)
	} else {
		rows.WriteString(`<tr><td COLSPAN="10"><input name="findmember" type="TEXT" value=""><input name="findmember_btn" type="SUBMIT" value="Suche..."></td></tr>` + "\n")
	}

	for _, m := range f.members {
		if paginated && firstLetter(m) != letter {
			continue
		}
		escaped := html.EscapeString(m)
		fmt.Fprintf(
			&rows,
			`<tr><td><center><input name="unsub" type="CHECKBOX" value="%s"></center></td><td><a href="../options/test/%s">%s</a><br>
<input name="%s_realname" type="TEXT" value=""></td><td><center><input name="%s_mod" type="CHECKBOX" value="off"></center></td></tr>`+"\n",
			escaped, escaped, escaped, escaped, escaped,
		)
	}

	f.writePage(w, fmt.Sprintf(`<table border="0"><tr><td>
	<table border="0"><tr><td><a href="%[1]s/general">Allgemeine Optionen</a></td></tr></table>
</td></tr></table>
<FORM action="%[1]s/members" method="POST">
<input type="hidden" name="csrf_token" value="%[2]s">
<table border="0" width="100%%"><tr><td><a href="%[1]s/members/add">[Eintragen]</a></td></tr></table>
<table WIDTH="100%%" BORDER="2">
%[3]s</table>
<input type="SUBMIT" name="setmemberopts_btn" value="Änderungen speichern">
</FORM>`, fakeListPath, f.token, rows.String()))
}

func splitAddresses(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func writeResultList(content *strings.Builder, heading string, entries []string) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(content, "<h5>%s</h5>\n<ul>\n", heading)
	for _, e := range entries {
		fmt.Fprintf(content, "<li>%s\n", html.EscapeString(e))
	}
	content.WriteString("</ul>\n")
}

func (f *fakeMailman) add(w http.ResponseWriter, subscribees string) {
	var succeeded, failed []string
	for _, addr := range splitAddresses(subscribees) {
		switch {
		case !strings.Contains(addr, "@"):
			failed = append(failed, addr+" -- Ungültige E-Mail-Adresse")
		case slices.Contains(f.members, addr):
			failed = append(failed, addr+" -- Bereits Mitglied")
		default:
			f.members = append(f.members, addr)
			succeeded = append(succeeded, addr)
		}
	}

	var content strings.Builder
	writeResultList(&content, "Erfolgreich eingetragen:", succeeded)
	writeResultList(&content, "Fehler beim Eintragen:", failed)
	f.writePage(w, content.String())
}

func (f *fakeMailman) remove(w http.ResponseWriter, unsubscribees string) {
	var succeeded, failed []string
	for _, addr := range splitAddresses(unsubscribees) {
		idx := slices.Index(f.members, addr)
		if idx < 0 {
			failed = append(failed, addr+" -- Kein Mitglied")
			continue
		}
		f.members = slices.Delete(f.members, idx, idx+1)
		succeeded = append(succeeded, addr)
	}

	var content strings.Builder
	writeResultList(&content, "Erfolgreich ausgetragen:", succeeded)
	writeResultList(&content, "Konnte nicht ausgetragen werden:", failed)
	f.writePage(w, content.String())
}

func (f *fakeMailman) change(w http.ResponseWriter, from, to string) {
	idx := slices.Index(f.members, from)
	switch {
	case idx < 0:
		f.writePage(w, fmt.Sprintf("<h3>%s ist kein Mitglied</h3>", html.EscapeString(from)))
	case slices.Contains(f.members, to):
		f.writePage(w, fmt.Sprintf("<h3>%s ist bereits Mitglied</h3>", html.EscapeString(to)))
	default:
		f.members[idx] = to
		f.writePage(w, fmt.Sprintf(
			"<h3>Adresse %s wurde erfolgreich zu %s geändert.</h3>",
			html.EscapeString(from), html.EscapeString(to),
		))
	}
}
