package templates

import "github.com/a-h/templ"

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f4f6f9;color:#1f2933}
nav{background:#2f5597;padding:.75rem 1.5rem;display:flex;gap:1rem;align-items:center}
nav a{color:#fff;text-decoration:none}
nav .user{margin-left:auto;color:#dbe4f3}
main{max-width:960px;margin:2rem auto;background:#fff;padding:1.5rem 2rem;border-radius:6px}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #e4e7eb;padding:.4rem .6rem;text-align:left}
td.num,th.num{text-align:right}
textarea{width:100%;font-family:monospace}
.alert{padding:.6rem 1rem;border-radius:4px;margin-bottom:1rem}
.alert.error{background:#fde8e8;color:#9b1c1c}
.alert.success{background:#def7ec;color:#03543f}
.stats{display:flex;gap:2rem}
.stats div{font-size:1.4rem}`

// layout wraps page content in the document shell. The nav is skipped
// when nav is nil.
func layout(title string, nav, content templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>`)
		h.text(title)
		h.raw("</title>\n<style>\n", styles, "\n</style>\n</head>\n<body>\n")
		if nav != nil {
			h.child(nav)
		}
		h.raw("\n<main>\n")
		h.child(content)
		h.raw("\n</main>\n</body>\n</html>")
	})
}

var navLinks = []struct{ href, label string }{
	{"/dashboard", "Painel"},
	{"/importar", "Importar"},
	{"/inserir", "Inserir"},
	{"/estoque", "Estoque"},
	{"/scan", "Scan"},
	{"/exportar", "Exportar"},
}

func navBar(user string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw("<nav>\n")
		for _, l := range navLinks {
			h.raw(`<a href="`, l.href, `">`, l.label, "</a>\n")
		}
		h.raw(`<span class="user">`)
		h.text(user)
		h.raw("</span>\n<a href=\"/logout\">Sair</a>\n</nav>")
	})
}

// appPage is a signed-in page with the navigation bar.
func appPage(title, user string, content templ.Component) templ.Component {
	return layout(title, navBar(user), content)
}

func alert(h *htmlWriter, class, msg string) {
	if msg == "" {
		return
	}
	h.raw(`<div class="alert `, class, `">`)
	h.text(msg)
	h.raw("</div>")
}

func flash(h *htmlWriter, f Flash) {
	alert(h, "success", f.Success)
	alert(h, "error", f.Error)
}

// ErrorAlert is the HTMX fragment for a failed request.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="alert error" role="alert">`, "\n<strong>")
		h.text(message)
		h.raw("</strong>")
		if action != "" {
			h.raw(" ")
			h.text(action)
		}
		h.raw("\n<small>(")
		h.text(code)
		h.raw(")</small>\n</div>")
	})
}
