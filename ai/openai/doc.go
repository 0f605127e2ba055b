// Copyright 2025 Poiesic Systems
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


// Package openai implements the ai interfaces against OpenAI-compatible
// APIs via langchaingo, including local services such as Ollama, LocalAI
// and vLLM.
//
// The query classifier prompts the model for a strict-JSON interpretation of
// a legal research query (jurisdiction path, practice-area path, intent,
// depth and temporal hints, confidence) and repairs common small-model JSON
// defects before parsing. Classification runs at temperature 0 for
// reproducibility; malformed responses are retried up to three times.
package openai
