package tsemitter

import "text/template"

const factoryTemplate = `export interface IHttpClient {
{{range .}}    {{.}}: <Result>(url: string, data?: any, headers?: HeadersInit) => Promise<Result>
{{end}}}

export default interface IHttpClientFactory {
    readonly host: string
    setNewAccessToken?(accessToken: string): void
    createClient(host: string): IHttpClient
}
`

const clientTemplate = `import IHttpClientFactory from '../../IHttpClientFactory'
{{range .Imports}}import {{.}} from '../models/{{.}}'
{{end}}
export default class {{.Name}} {
    private readonly httpClientFactory: IHttpClientFactory

    constructor(httpClientFactory: IHttpClientFactory) {
        this.httpClientFactory = httpClientFactory
    }
{{range .Methods}}
    // prettier-ignore
    public {{.Name}} = ({{.Signature}}): Promise<{{.Return}}> =>
        this.httpClientFactory
            .createClient(this.httpClientFactory.host)
            .{{.Verb}}<{{.Return}}>({{.URL}}{{with .Payload}}, {{.}}{{end}})
{{end}}}
`

const interfaceTemplate = `{{range .Imports}}import {{.}} from './{{.}}'
{{end}}{{if .Imports}}
{{end}}export default interface {{.Name}} {
{{range .Fields}}    {{.Key}}{{if not .Required}}?{{end}}: {{.Type}}
{{end}}}
`

const enumTemplate = `enum {{.Name}} {
{{range .Fields}}    {{.Key}} = {{.Value}},
{{end}}}

export default {{.Name}}
`

var templates = template.Must(template.New("factory").Parse(factoryTemplate))

func init() {
	template.Must(templates.New("client").Parse(clientTemplate))
	template.Must(templates.New("interface").Parse(interfaceTemplate))
	template.Must(templates.New("enum").Parse(enumTemplate))
}
