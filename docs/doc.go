// Package docs provides generated OpenAPI documentation.
//
// Kaidan API
//
//	@title			Kaidan API
//	@version		1.0
//	@description	Question answering over digitized library books with cited sources.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/kaidan
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/kaidan/serve.go -o . --parseDependency --parseInternal
