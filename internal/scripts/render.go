package scripts

import (
	"fmt"
	"html/template"
	"io"
)

var tagTemplates = template.Must(template.New("scripts").Parse(`
{{- define "google_analytics" -}}
<script async src="https://www.googletagmanager.com/gtag/js?id={{.TagID}}"></script>
<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config',{{.TagID}});</script>
{{ end -}}
{{- define "google_tag_manager" -}}
<script>(function(w,d,s,l,i){w[l]=w[l]||[];w[l].push({'gtm.start':new Date().getTime(),event:'gtm.js'});var f=d.getElementsByTagName(s)[0],j=d.createElement(s),dl=l!='dataLayer'?'&l='+l:'';j.async=true;j.src='https://www.googletagmanager.com/gtm.js?id='+i+dl;f.parentNode.insertBefore(j,f);})(window,document,'script','dataLayer',{{.TagID}});</script>
{{ end -}}
{{- define "meta_pixel" -}}
<script>!function(f,b,e,v,n,t,s){if(f.fbq)return;n=f.fbq=function(){n.callMethod?n.callMethod.apply(n,arguments):n.queue.push(arguments)};if(!f._fbq)f._fbq=n;n.push=n;n.loaded=!0;n.version='2.0';n.queue=[];t=b.createElement(e);t.async=!0;t.src=v;s=b.getElementsByTagName(e)[0];s.parentNode.insertBefore(t,s)}(window,document,'script','https://connect.facebook.net/en_US/fbevents.js');fbq('init',{{.TagID}});fbq('track','PageView');</script>
{{ end -}}
`))

// Render writes the tags of every script that may mount now.
func (g *Gate) Render(w io.Writer) error {
	for _, s := range g.Evaluate() {
		if err := tagTemplates.ExecuteTemplate(w, string(s.ID), s); err != nil {
			return fmt.Errorf("render %s: %w", s.ID, err)
		}
	}
	return nil
}
