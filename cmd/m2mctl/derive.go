// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/m2m/identity"
	"github.com/sage-x-project/m2m/internal/logger"
	"github.com/sage-x-project/m2m/keys"
)

var (
	deriveMaster          string
	deriveOrg             string
	deriveAgent           string
	derivePeer            string
	deriveSession         string
	deriveAssertion       string
	deriveAssertionSecret string
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive an agent or session key from an org master key",
	Long: `Derive a key from the m2m key hierarchy.

Pass --agent alone to derive that agent's per-agent key. Pass --agent
together with --peer and --session to derive the pairwise session key
for a conversation between the two agents; the result is identical
regardless of which of the two agents runs the command.`,
	Example: `  # Derive an agent key
  m2mctl key derive --master master.key --org acme --agent router

  # Derive a session key shared between two agents
  m2mctl key derive --master master.key --org acme --agent router --peer billing --session s-001`,
	RunE: runDerive,
}

func init() {
	keyCmd.AddCommand(deriveCmd)
	deriveCmd.Flags().StringVar(&deriveMaster, "master", "", "org master key, hex string or path to a file containing one (required)")
	deriveCmd.Flags().StringVar(&deriveOrg, "org", "", "org id (required)")
	deriveCmd.Flags().StringVar(&deriveAgent, "agent", "", "agent id (required)")
	deriveCmd.Flags().StringVar(&derivePeer, "peer", "", "peer agent id, to derive a session key instead of an agent key")
	deriveCmd.Flags().StringVar(&deriveSession, "session", "", "session id, required together with --peer")
	deriveCmd.Flags().StringVar(&deriveAssertion, "assertion", "", "signed AgentAssertion token gating this derivation; required together with --assertion-secret")
	deriveCmd.Flags().StringVar(&deriveAssertionSecret, "assertion-secret", "", "HMAC secret the AgentAssertion was signed with")
	deriveCmd.MarkFlagRequired("master")
	deriveCmd.MarkFlagRequired("org")
	deriveCmd.MarkFlagRequired("agent")
}

func runDerive(cmd *cobra.Command, args []string) error {
	master, err := loadMasterKey(deriveMaster)
	if err != nil {
		return err
	}
	defer master.Close()

	org, err := keys.NewOrgId(deriveOrg)
	if err != nil {
		return fmt.Errorf("invalid --org: %w", err)
	}
	agent, err := keys.NewAgentId(deriveAgent)
	if err != nil {
		return fmt.Errorf("invalid --agent: %w", err)
	}

	if err := verifyDeriveAssertion(string(org), string(agent)); err != nil {
		return err
	}

	hierarchy := keys.NewKeyHierarchy(master, org)

	if derivePeer == "" {
		derived, err := hierarchy.AgentKey(agent)
		if err != nil {
			return fmt.Errorf("deriving agent key: %w", err)
		}
		defer derived.Close()
		fmt.Println(hex.EncodeToString(derived.Bytes()))
		return nil
	}

	if deriveSession == "" {
		return fmt.Errorf("--session is required together with --peer")
	}
	peer, err := keys.NewAgentId(derivePeer)
	if err != nil {
		return fmt.Errorf("invalid --peer: %w", err)
	}
	derived, err := hierarchy.SessionKey(agent, peer, deriveSession)
	if err != nil {
		return fmt.Errorf("deriving session key: %w", err)
	}
	defer derived.Close()
	fmt.Println(hex.EncodeToString(derived.Bytes()))
	return nil
}

// verifyDeriveAssertion gates key derivation on a signed identity
// assertion when --assertion is supplied: the caller must present a
// token naming the same org/agent being derived for, per identity's
// role as the "who asked for this key" signal in front of the bare
// KeyHierarchy. No-op if --assertion is omitted.
func verifyDeriveAssertion(org, agent string) error {
	if deriveAssertion == "" {
		return nil
	}
	if deriveAssertionSecret == "" {
		return fmt.Errorf("--assertion requires --assertion-secret")
	}
	verifier := identity.NewVerifier([]byte(deriveAssertionSecret))
	claims, err := verifier.Verify(deriveAssertion)
	if err != nil {
		logger.Warn("agent assertion rejected", logger.String("org", org), logger.String("agent", agent))
		return fmt.Errorf("verifying --assertion: %w", err)
	}
	if claims.Org != org || claims.AgentID != agent {
		logger.Warn("agent assertion org/agent mismatch",
			logger.String("claim_org", claims.Org), logger.String("claim_agent", claims.AgentID),
			logger.String("org", org), logger.String("agent", agent))
		return fmt.Errorf("verifying --assertion: %w: claims (%s/%s) do not match --org/--agent (%s/%s)",
			identity.ErrInvalidAssertion, claims.Org, claims.AgentID, org, agent)
	}
	logger.Debug("agent assertion verified", logger.String("org", org), logger.String("agent", agent))
	return nil
}
