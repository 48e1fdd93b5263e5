// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

// votingContractABI is the ABI for the deployed Voting contract
const votingContractABI = `[
  {
    "type": "function",
    "name": "createElection",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_title", "type": "string"},
      {"name": "_description", "type": "string"},
      {"name": "_startTime", "type": "uint256"},
      {"name": "_endTime", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "addCandidate",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_electionId", "type": "uint256"},
      {"name": "_candidateId", "type": "uint256"},
      {"name": "_name", "type": "string"},
      {"name": "_party", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "registerVoter",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_electionId", "type": "uint256"},
      {"name": "_voter", "type": "address"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "vote",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_electionId", "type": "uint256"},
      {"name": "_candidateId", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "getVoter",
    "stateMutability": "view",
    "inputs": [
      {"name": "_electionId", "type": "uint256"},
      {"name": "_voter", "type": "address"}
    ],
    "outputs": [
      {"name": "isRegistered", "type": "bool"},
      {"name": "hasVoted", "type": "bool"},
      {"name": "votedFor", "type": "uint256"},
      {"name": "registrationTime", "type": "uint256"}
    ]
  },
  {
    "type": "function",
    "name": "getResults",
    "stateMutability": "view",
    "inputs": [
      {"name": "_electionId", "type": "uint256"}
    ],
    "outputs": [
      {"name": "candidateIds", "type": "uint256[]"},
      {"name": "voteCounts", "type": "uint256[]"}
    ]
  },
  {
    "type": "function",
    "name": "getTotalVotes",
    "stateMutability": "view",
    "inputs": [
      {"name": "_electionId", "type": "uint256"}
    ],
    "outputs": [
      {"name": "totalVotes", "type": "uint256"}
    ]
  },
  {
    "type": "function",
    "name": "getWinner",
    "stateMutability": "view",
    "inputs": [
      {"name": "_electionId", "type": "uint256"}
    ],
    "outputs": [
      {"name": "candidateId", "type": "uint256"},
      {"name": "name", "type": "string"},
      {"name": "party", "type": "string"},
      {"name": "voteCount", "type": "uint256"}
    ]
  },
  {
    "type": "event",
    "name": "ElectionCreated",
    "inputs": [
      {"name": "electionId", "type": "uint256", "indexed": true},
      {"name": "title", "type": "string", "indexed": false}
    ],
    "anonymous": false
  },
  {
    "type": "event",
    "name": "VoteCast",
    "inputs": [
      {"name": "electionId", "type": "uint256", "indexed": true},
      {"name": "candidateId", "type": "uint256", "indexed": true},
      {"name": "voter", "type": "address", "indexed": false}
    ],
    "anonymous": false
  }
]`
