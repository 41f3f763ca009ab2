/*
Copyright 2026 The latent-search Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bomac1193/latent-search/internal/store"
)

var authenticateCmd = &cobra.Command{
	Use:   "authenticate --user=foo",
	Short: "Links a Spotify account to a local user",
	Long: `Prints the Spotify authorize URL. Visit it, grant access, then
paste the "code" query parameter from the redirect back here.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAuthenticate(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(authenticateCmd)
}

func runAuthenticate(cmd *cobra.Command) error {
	user := strings.ToLower(viper.GetString("user"))

	creds := credentials()
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("client_id and client_secret must be set")
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	existing, err := db.GetToken(user)
	if err != nil {
		return err
	}
	if existing.Valid() {
		return fmt.Errorf("user %q already has a valid token", user)
	}

	fmt.Printf("Visit this URL and grant access:\n\n%s\n\n", creds.AuthURL(user))
	fmt.Print("Paste the code from the redirect URL: ")
	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no code entered")
	}

	tok, err := creds.ExchangeCode(cmd.Context(), code)
	if err != nil {
		return fmt.Errorf("exchanging code: %w", err)
	}

	err = db.SetToken(user, store.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Successfully authenticated %q\n", user)
	return nil
}
