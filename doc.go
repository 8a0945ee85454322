// Package adwords is a Go client for the AdWords AdGroupService.
//
// # Quick Start
//
// Remove an ad group by marking it REMOVED and renaming it with a removal
// timestamp, so a new ad group can later be created under the old name:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		adwords "github.com/adwords-api/adwords-golang"
//	)
//
//	func main() {
//		path, err := adwords.DefaultConfigPath()
//		if err != nil {
//			log.Fatal(err)
//		}
//		client, err := adwords.NewClient(path)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer client.Close()
//
//		result, err := client.AdGroups.Remove(12345)
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(result.Message())
//	}
//
// # Core Features
//
//   - AdGroupService get (with paging) and mutate
//   - Safe remove-by-rename of ad groups
//   - OAuth2 refresh-token authentication
//   - adwords_api.yml configuration with environment overrides
//   - Automatic retry with exponential backoff for reads
//   - Typed errors classified by ErrorKind
//   - Request/response hooks for monitoring
//
// # Environment Variables
//
//   - ADWORDS_CONFIG_FILE: path of an adwords_api.yml file
//   - ADWORDS_DEVELOPER_TOKEN: developer token
//   - ADWORDS_CLIENT_CUSTOMER_ID: customer id the calls act on
//   - ADWORDS_OAUTH2_CLIENT_ID, ADWORDS_OAUTH2_CLIENT_SECRET,
//     ADWORDS_OAUTH2_REFRESH_TOKEN: OAuth2 credentials
//   - ADWORDS_BASE_URL: optional API base URL
//   - ADWORDS_TIMEOUT: optional request timeout (defaults to 60s)
//   - ADWORDS_MAX_RETRIES: optional max retries for reads (defaults to 3)
package adwords
